package catalog

import (
	"github.com/google/uuid"
	"github.com/roomkit/sceneedit/pkg/core"
)

// PlaceOption adjusts an object built by Place.
type PlaceOption func(*core.PlacedObject)

// At sets the object's position.
func At(pos core.Vec3) PlaceOption {
	return func(o *core.PlacedObject) {
		o.Position = pos
	}
}

// Rotated sets the rotation about the vertical axis, in radians.
func Rotated(rad float64) PlaceOption {
	return func(o *core.PlacedObject) {
		o.Rotation = rad
	}
}

// WithID replaces the generated id.
func WithID(id string) PlaceOption {
	return func(o *core.PlacedObject) {
		o.ID = id
	}
}

// WithMeta attaches metadata to the object.
func WithMeta(meta map[string]any) PlaceOption {
	return func(o *core.PlacedObject) {
		o.Meta = meta
	}
}

// Place builds a new object from p. By default it gets a fresh UUID and
// rests on the floor at the origin.
func Place(p core.Preset, opts ...PlaceOption) core.PlacedObject {
	o := core.PlacedObject{
		ID:       uuid.NewString(),
		Name:     p.Name,
		Category: p.Category,
		Size:     p.Size,
		Position: core.Vec3{0, p.Size.Height() / 2, 0},
		Color:    p.Color,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
