// Package parser turns editor command arguments into typed values.
// Arguments arrive as strings from the command line or a script.
package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roomkit/sceneedit/pkg/core"
)

var (
	// ErrInvalidNumber is returned for a value that is not a finite number
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidVector is returned for a malformed "x,y,z" triple
	ErrInvalidVector = errors.New("invalid vector")
	// ErrInvalidColor is returned for a value that is not a hex or named color
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidPatch is returned for a malformed key=value update
	ErrInvalidPatch = errors.New("invalid patch")
)

// ParseFloat parses a finite float64.
func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return f, nil
}

// ParseVec3 parses "x,y,z" into a core.Vec3.
// "x,z" is accepted as a floor position with y = 0.
func ParseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "[]()"), ",")
	if len(parts) != 2 && len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %q: want x,y,z", ErrInvalidVector, s)
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := ParseFloat(p)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w: %q: component %d: %v", ErrInvalidVector, s, i, err)
		}
		vals[i] = f
	}

	if len(vals) == 2 {
		return core.Vec3{vals[0], 0, vals[1]}, nil
	}
	return core.Vec3{vals[0], vals[1], vals[2]}, nil
}

// ParseRotation parses an angle about the vertical axis into radians.
// Plain numbers are radians; a "deg" or "°" suffix marks degrees.
func ParseRotation(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, suffix := range []string{"deg", "°"} {
		if strings.HasSuffix(s, suffix) {
			deg, err := ParseFloat(strings.TrimSuffix(s, suffix))
			if err != nil {
				return 0, err
			}
			return deg * math.Pi / 180, nil
		}
	}
	s = strings.TrimSuffix(s, "rad")
	return ParseFloat(s)
}

// FormatVec3 renders v the way ParseVec3 reads it.
func FormatVec3(v core.Vec3) string {
	return fmt.Sprintf("%s,%s,%s",
		strconv.FormatFloat(v[0], 'f', -1, 64),
		strconv.FormatFloat(v[1], 'f', -1, 64),
		strconv.FormatFloat(v[2], 'f', -1, 64),
	)
}
