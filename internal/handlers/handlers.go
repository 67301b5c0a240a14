// Package handlers binds editor commands to the scene store.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/roomkit/sceneedit/internal/catalog"
	"github.com/roomkit/sceneedit/internal/dispatcher"
	"github.com/roomkit/sceneedit/internal/layout"
	"github.com/roomkit/sceneedit/internal/parser"
	"github.com/roomkit/sceneedit/internal/scene"
	"github.com/roomkit/sceneedit/internal/util"
	"github.com/roomkit/sceneedit/pkg/core"
)

// Command names routed by the dispatcher.
const (
	CmdObjectAdd      = ":OBJECT:ADD:"
	CmdObjectUpdate   = ":OBJECT:UPDATE:"
	CmdObjectRemove   = ":OBJECT:REMOVE:"
	CmdSelect         = ":SELECT:"
	CmdPick           = ":PICK:"
	CmdUndo           = ":UNDO:"
	CmdRedo           = ":REDO:"
	CmdSceneList      = ":SCENE:LIST:"
	CmdSceneCollision = ":SCENE:COLLISIONS:"
	CmdSceneArea      = ":SCENE:AREA:"
	CmdCatalogList    = ":CATALOG:LIST:"
)

// SelectedRef stands for the selected object wherever an id is expected.
const SelectedRef = "."

// ErrUsage is returned when a command gets the wrong number of arguments.
var ErrUsage = errors.New("wrong number of arguments")

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Store   *scene.Store
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// Service provides the handler methods for editor commands
type Service struct {
	deps Dependencies
	log  *slog.Logger
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	return &Service{deps: deps, log: log}
}

// RegisterHandlers registers all editor commands with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Structural edits
	d.Register(CmdObjectAdd, s.handleAdd, dispatcher.Logged())
	d.Register(CmdObjectUpdate, s.handleUpdate, dispatcher.Logged())
	d.Register(CmdObjectRemove, s.handleRemove, dispatcher.Logged())

	// Selection
	d.Register(CmdSelect, s.handleSelect, dispatcher.Logged())
	d.Register(CmdPick, s.handlePick, dispatcher.Logged())

	// History
	d.Register(CmdUndo, s.handleUndo, dispatcher.Logged())
	d.Register(CmdRedo, s.handleRedo, dispatcher.Logged())

	// Queries
	d.Register(CmdSceneList, s.handleList)
	d.Register(CmdSceneCollision, s.handleCollisions)
	d.Register(CmdSceneArea, s.handleArea)
	d.Register(CmdCatalogList, s.handleCatalog)
}

func (s *Service) handleAdd(e dispatcher.Event) (any, error) {
	req, err := parser.ParseAdd(util.CleanArgs(e.Args))
	if err != nil {
		return nil, fmt.Errorf("failed to add object: %w", err)
	}

	preset, err := s.deps.Catalog.Lookup(req.Preset)
	if err != nil {
		return nil, fmt.Errorf("failed to add object: %w", err)
	}

	var opts []catalog.PlaceOption
	if req.Position != nil {
		pos := *req.Position
		if req.FloorOnly {
			pos[1] = preset.Size.Height() / 2
		}
		opts = append(opts, catalog.At(pos))
	}
	if req.Rotation != nil {
		opts = append(opts, catalog.Rotated(*req.Rotation))
	}
	obj := catalog.Place(preset, opts...)

	if err := s.deps.Store.AddObject(obj); err != nil {
		return nil, fmt.Errorf("failed to add object: %w", err)
	}
	s.log.Info("Object added", "id", obj.ID, "preset", preset.Name)
	return obj, nil
}

// handleUpdate merges meta.<key> arguments into the object's existing
// metadata; an empty value deletes the key.
func (s *Service) handleUpdate(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)
	if len(args) < 2 {
		return nil, fmt.Errorf("failed to update object: %w: want id key=value...", ErrUsage)
	}
	id, err := s.resolveID(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to update object: %w", err)
	}

	patch, err := parser.ParsePatch(args[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to update object %s: %w", id, err)
	}

	current, ok := s.deps.Store.Object(id)
	if !ok {
		return nil, fmt.Errorf("failed to update object: %w: %s", scene.ErrNotFound, id)
	}
	if patch.Meta != nil {
		patch.Meta = mergeMeta(current.Meta, patch.Meta)
	}

	if err := s.deps.Store.UpdateObject(id, patch); err != nil {
		return nil, fmt.Errorf("failed to update object: %w", err)
	}

	updated, _ := s.deps.Store.Object(id)
	return updated, nil
}

func mergeMeta(current, changes map[string]any) map[string]any {
	out := make(map[string]any, len(current)+len(changes))
	maps.Copy(out, current)
	for k, v := range changes {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func (s *Service) handleRemove(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)
	if len(args) != 1 {
		return nil, fmt.Errorf("failed to remove object: %w: want id", ErrUsage)
	}

	id, err := s.resolveID(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to remove object: %w", err)
	}
	if err := s.deps.Store.RemoveObject(id); err != nil {
		return nil, fmt.Errorf("failed to remove object: %w", err)
	}
	return id, nil
}

// resolveID maps SelectedRef to the selected object's id.
func (s *Service) resolveID(id string) (string, error) {
	if id != SelectedRef {
		return id, nil
	}
	sel := s.deps.Store.SelectedID()
	if sel == "" {
		return "", fmt.Errorf("%w: nothing selected", scene.ErrNotFound)
	}
	return sel, nil
}

// handleSelect treats "none" or an empty id as clearing the selection.
func (s *Service) handleSelect(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)
	if len(args) > 1 {
		return nil, fmt.Errorf("failed to select: %w: want id or none", ErrUsage)
	}

	id := ""
	if len(args) == 1 && !strings.EqualFold(args[0], "none") {
		id = args[0]
	}

	if err := s.deps.Store.Select(id); err != nil {
		return nil, fmt.Errorf("failed to select: %w", err)
	}
	return s.deps.Store.SelectedID(), nil
}

// handlePick selects the object under a floor point. Empty floor clears the
// selection.
func (s *Service) handlePick(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)
	if len(args) != 2 {
		return nil, fmt.Errorf("failed to pick: %w: want x z", ErrUsage)
	}

	x, err := parser.ParseFloat(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to pick: x: %w", err)
	}
	z, err := parser.ParseFloat(args[1])
	if err != nil {
		return nil, fmt.Errorf("failed to pick: z: %w", err)
	}

	id, _ := layout.Pick(s.deps.Store.Objects(), x, z)
	if err := s.deps.Store.Select(id); err != nil {
		return nil, fmt.Errorf("failed to pick: %w", err)
	}
	return id, nil
}

func (s *Service) handleUndo(e dispatcher.Event) (any, error) {
	return s.deps.Store.Undo(), nil
}

func (s *Service) handleRedo(e dispatcher.Event) (any, error) {
	return s.deps.Store.Redo(), nil
}

func (s *Service) handleList(e dispatcher.Event) (any, error) {
	return s.deps.Store.Snapshot(), nil
}

func (s *Service) handleCollisions(e dispatcher.Event) (any, error) {
	c, err := layout.Collisions(s.deps.Store.Objects())
	if err != nil {
		return nil, fmt.Errorf("failed to check collisions: %w", err)
	}
	return c, nil
}

func (s *Service) handleArea(e dispatcher.Event) (any, error) {
	a, err := layout.Area(s.deps.Store.Objects())
	if err != nil {
		return nil, fmt.Errorf("failed to compute area: %w", err)
	}
	return a, nil
}

// handleCatalog lists every preset, or one category when given.
func (s *Service) handleCatalog(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)
	if len(args) == 0 {
		return s.deps.Catalog.Presets(), nil
	}
	presets := s.deps.Catalog.InCategory(strings.ToLower(args[0]))
	if presets == nil {
		return []core.Preset{}, nil
	}
	return presets, nil
}
