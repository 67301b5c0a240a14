// pkg/core/object.go
package core

// PlacedObject is one furniture instance in the scene.
// ID, Category and Size are fixed when the object is created.
type PlacedObject struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Size     Size           `json:"size"`
	Position Vec3           `json:"position"`
	Rotation float64        `json:"rotation"` // radians about the vertical axis
	Color    string         `json:"color"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Clone returns a copy of the object that does not share its Meta map.
func (o PlacedObject) Clone() PlacedObject {
	if o.Meta != nil {
		meta := make(map[string]any, len(o.Meta))
		for k, v := range o.Meta {
			meta[k] = v
		}
		o.Meta = meta
	}
	return o
}

// Patch is a shallow update of the mutable fields of a PlacedObject.
// Nil fields are left untouched; a non-nil Meta replaces the whole map.
type Patch struct {
	Name     *string
	Position *Vec3
	Rotation *float64
	Color    *string
	Meta     map[string]any
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Position == nil && p.Rotation == nil && p.Color == nil && p.Meta == nil
}

// Apply returns o with the patch merged in. o itself is not modified.
func (p Patch) Apply(o PlacedObject) PlacedObject {
	out := o.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.Meta != nil {
		out.Meta = PlacedObject{Meta: p.Meta}.Clone().Meta
	}
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
