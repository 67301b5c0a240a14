package parser

import (
	"fmt"
	"strings"

	"github.com/roomkit/sceneedit/pkg/core"
)

// ParsePatch builds a core.Patch from key=value arguments.
//
// Keys: name, position|pos, rotation|rot, color, meta.<key>.
// Meta keys are merged into a fresh map; since a patch replaces meta as a
// whole, callers that want to keep existing entries should merge them first.
func ParsePatch(args []string) (core.Patch, error) {
	var patch core.Patch

	if len(args) == 0 {
		return patch, fmt.Errorf("%w: no fields given", ErrInvalidPatch)
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return core.Patch{}, fmt.Errorf("%w: %q: want key=value", ErrInvalidPatch, arg)
		}
		key = strings.ToLower(strings.TrimSpace(key))

		switch {
		case key == "name":
			name := strings.TrimSpace(value)
			if name == "" {
				return core.Patch{}, fmt.Errorf("%w: empty name", ErrInvalidPatch)
			}
			patch.Name = &name

		case key == "position" || key == "pos":
			v, err := ParseVec3(value)
			if err != nil {
				return core.Patch{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
			}
			patch.Position = &v

		case key == "rotation" || key == "rot":
			r, err := ParseRotation(value)
			if err != nil {
				return core.Patch{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
			}
			patch.Rotation = &r

		case key == "color":
			c, err := ParseColor(value)
			if err != nil {
				return core.Patch{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
			}
			patch.Color = &c

		case strings.HasPrefix(key, "meta."):
			mk := strings.TrimPrefix(key, "meta.")
			if mk == "" {
				return core.Patch{}, fmt.Errorf("%w: empty meta key", ErrInvalidPatch)
			}
			if patch.Meta == nil {
				patch.Meta = make(map[string]any)
			}
			patch.Meta[mk] = value

		default:
			return core.Patch{}, fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, key)
		}
	}

	return patch, nil
}
