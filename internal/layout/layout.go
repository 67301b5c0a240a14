// Package layout answers floor-plan questions about a scene.
//
// Objects are projected onto the x/z plane: each one occupies the rectangle
// width x depth centred on its position and turned by its rotation about the
// vertical axis. The projection is what a top-down renderer draws and what
// click selection and overlap checks use.
package layout

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/roomkit/sceneedit/pkg/core"
)

// minOverlap is the smallest shared area reported as a collision.
// Objects that merely touch along an edge share zero area.
const minOverlap = 1e-9

// ErrDegenerate is returned when a footprint cannot be built
var ErrDegenerate = errors.New("degenerate footprint")

// Collision is a pair of objects whose footprints overlap.
type Collision struct {
	A    string  `json:"a"`
	B    string  `json:"b"`
	Area float64 `json:"area"`
}

// Corners returns the four footprint corners of obj in counter-clockwise
// order as (x, z) pairs.
func Corners(obj core.PlacedObject) [4][2]float64 {
	hw, hd := obj.Size.Width()/2, obj.Size.Depth()/2
	sin, cos := math.Sincos(obj.Rotation)
	cx, cz := obj.Position.X(), obj.Position.Z()

	local := [4][2]float64{{-hw, -hd}, {hw, -hd}, {hw, hd}, {-hw, hd}}
	var out [4][2]float64
	for i, p := range local {
		out[i] = [2]float64{
			cx + p[0]*cos + p[1]*sin,
			cz - p[0]*sin + p[1]*cos,
		}
	}
	return out
}

// Footprint builds the floor polygon of obj.
func Footprint(obj core.PlacedObject) (geom.Polygon, error) {
	if !obj.Size.Valid() {
		return geom.Polygon{}, fmt.Errorf("%w: object %q has size %v", ErrDegenerate, obj.ID, obj.Size)
	}

	c := Corners(obj)
	flat := make([]float64, 0, 10)
	for _, p := range c {
		flat = append(flat, p[0], p[1])
	}
	// close the ring
	flat = append(flat, c[0][0], c[0][1])

	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring}), nil
}

// Pick returns the id of the object whose footprint contains (x, z).
// When footprints stack, the most recently added object wins, matching
// draw order.
func Pick(objs []core.PlacedObject, x, z float64) (string, bool) {
	pt := geom.XY{X: x, Y: z}.AsPoint().AsGeometry()

	for i := len(objs) - 1; i >= 0; i-- {
		poly, err := Footprint(objs[i])
		if err != nil {
			continue
		}
		if geom.Intersects(poly.AsGeometry(), pt) {
			return objs[i].ID, true
		}
	}
	return "", false
}

// Collisions lists every pair of objects whose footprints share a positive
// area, in insertion order of the first object then the second.
func Collisions(objs []core.PlacedObject) ([]Collision, error) {
	polys := make([]geom.Geometry, len(objs))
	for i, o := range objs {
		p, err := Footprint(o)
		if err != nil {
			return nil, err
		}
		polys[i] = p.AsGeometry()
	}

	var out []Collision
	for i := 0; i < len(objs); i++ {
		for j := i + 1; j < len(objs); j++ {
			if tooFar(objs[i], objs[j]) || !geom.Intersects(polys[i], polys[j]) {
				continue
			}
			shared, err := geom.Intersection(polys[i], polys[j])
			if err != nil {
				return nil, fmt.Errorf("intersect %q and %q: %w", objs[i].ID, objs[j].ID, err)
			}
			if a := shared.Area(); a > minOverlap {
				out = append(out, Collision{A: objs[i].ID, B: objs[j].ID, Area: a})
			}
		}
	}
	return out, nil
}

// Area returns the floor area covered by objs. Overlapping regions count once.
func Area(objs []core.PlacedObject) (float64, error) {
	if len(objs) == 0 {
		return 0, nil
	}

	var covered geom.Geometry
	for i, o := range objs {
		p, err := Footprint(o)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			covered = p.AsGeometry()
			continue
		}
		covered, err = geom.Union(covered, p.AsGeometry())
		if err != nil {
			return 0, fmt.Errorf("union %q: %w", o.ID, err)
		}
	}
	return covered.Area(), nil
}

// tooFar reports whether the bounding circles of a and b are disjoint.
func tooFar(a, b core.PlacedObject) bool {
	dx := a.Position.X() - b.Position.X()
	dz := a.Position.Z() - b.Position.Z()
	return math.Hypot(dx, dz) > radius(a)+radius(b)
}

func radius(o core.PlacedObject) float64 {
	return math.Hypot(o.Size.Width(), o.Size.Depth()) / 2
}
