// pkg/core/vector.go
package core

import "math"

// Vec3 is a position in scene space. Y is up.
type Vec3 [3]float64

// X returns the first component
func (v Vec3) X() float64 { return v[0] }

// Y returns the vertical component
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component
func (v Vec3) Z() float64 { return v[2] }

// Valid reports whether every component is finite.
func (v Vec3) Valid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Size holds the width, height and depth of an object.
type Size [3]float64

// Width is the extent along the local x axis
func (s Size) Width() float64 { return s[0] }

// Height is the extent along the vertical axis
func (s Size) Height() float64 { return s[1] }

// Depth is the extent along the local z axis
func (s Size) Depth() float64 { return s[2] }

// Valid reports whether every dimension is a finite positive number.
func (s Size) Valid() bool {
	for _, d := range s {
		if !(d > 0) || math.IsInf(d, 1) {
			return false
		}
	}
	return true
}
