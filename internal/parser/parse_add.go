package parser

import (
	"fmt"
	"strings"

	"github.com/roomkit/sceneedit/pkg/core"
)

// AddRequest is a parsed request to place a preset.
type AddRequest struct {
	Preset   string
	Position *core.Vec3
	Rotation *float64

	// FloorOnly is set when the position gave only x and z.
	FloorOnly bool
}

// ParseAdd parses placement arguments.
// Args: [preset, "x,y,z" (optional), rotation (optional)]
func ParseAdd(data []string) (AddRequest, error) {
	var result AddRequest

	if len(data) < 1 || strings.TrimSpace(data[0]) == "" {
		return result, fmt.Errorf("insufficient data fields: got %d, need preset name", len(data))
	}
	if len(data) > 3 {
		return result, fmt.Errorf("too many data fields: got %d, want at most 3", len(data))
	}

	// [0] preset name
	result.Preset = strings.TrimSpace(data[0])

	// [1] position
	if len(data) > 1 {
		pos, err := ParseVec3(data[1])
		if err != nil {
			return result, fmt.Errorf("error parsing position: %w", err)
		}
		result.Position = &pos
		result.FloorOnly = strings.Count(data[1], ",") == 1
	}

	// [2] rotation
	if len(data) > 2 {
		rot, err := ParseRotation(data[2])
		if err != nil {
			return result, fmt.Errorf("error parsing rotation: %w", err)
		}
		result.Rotation = &rot
	}

	return result, nil
}
