// pkg/core/preset.go
package core

// Preset is a furniture template offered by the catalog.
type Preset struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     Size   `json:"size"`
	Color    string `json:"color"`
}

// Snapshot is a point-in-time copy of the scene.
type Snapshot struct {
	Objects    []PlacedObject `json:"objects"`
	SelectedID string         `json:"selectedId,omitempty"`
}
