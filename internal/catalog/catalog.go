// Package catalog provides the furniture presets an editor can place.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/roomkit/sceneedit/internal/parser"
	"github.com/roomkit/sceneedit/pkg/core"
)

var (
	// ErrUnknownPreset is returned by Lookup for a name not in the catalog
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrInvalidPreset is returned when a preset fails validation
	ErrInvalidPreset = errors.New("invalid preset")
)

// Categories lists the preset categories, in display order.
var Categories = []string{"seating", "tables", "beds", "storage", "decor", "lighting"}

// Catalog is a read-mostly set of presets keyed by case-insensitive name.
type Catalog struct {
	mu      sync.RWMutex
	presets []core.Preset
	byName  map[string]int
}

// New validates presets and builds a catalog preserving their order.
func New(presets []core.Preset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(presets))}
	for _, p := range presets {
		if err := c.add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultPresets)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Load reads a JSON array of presets from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var presets []core.Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: catalog %s is empty", ErrInvalidPreset, path)
	}
	return New(presets)
}

// Add validates p and appends it to the catalog.
func (c *Catalog) Add(p core.Preset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(p)
}

func (c *Catalog) add(p core.Preset) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPreset)
	}
	key := strings.ToLower(p.Name)
	if _, ok := c.byName[key]; ok {
		return fmt.Errorf("%w: duplicate name %q", ErrInvalidPreset, p.Name)
	}
	if !slices.Contains(Categories, p.Category) {
		return fmt.Errorf("%w: %q: unknown category %q", ErrInvalidPreset, p.Name, p.Category)
	}
	if !p.Size.Valid() {
		return fmt.Errorf("%w: %q: size %v", ErrInvalidPreset, p.Name, p.Size)
	}
	color, err := parser.ParseColor(p.Color)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPreset, p.Name, err)
	}
	p.Color = color

	c.byName[key] = len(c.presets)
	c.presets = append(c.presets, p)
	return nil
}

// Lookup finds a preset by name, ignoring case.
func (c *Catalog) Lookup(name string) (core.Preset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c.presets[i], nil
	}
	return core.Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Presets returns a copy of every preset in catalog order.
func (c *Catalog) Presets() []core.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.presets)
}

// InCategory returns the presets of one category.
func (c *Catalog) InCategory(category string) []core.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []core.Preset
	for _, p := range c.presets {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.presets)
}
