package geom

import (
	"fmt"

	"github.com/go-sod/rrt/pkg/container/kdtree"
)

var ErrNonFinite = fmt.Errorf("point coordinates must be finite")

// Validate rejects points carrying NaN or infinite coordinates.
func Validate(points ...kdtree.Point) error {
	for i, p := range points {
		if !p.Finite() {
			return fmt.Errorf("point %d %v: %w", i, p, ErrNonFinite)
		}
	}
	return nil
}

// Steer moves from towards to by at most step in the x-y plane. The result
// takes Z from to.
func Steer(from, to kdtree.Point, step float64) kdtree.Point {
	d := EuclideanDistance(from, to)
	if d <= step || d == 0 {
		return to
	}
	return Lerp(from, to, step/d)
}

// Lerp interpolates between a and b in the x-y plane, Z is taken from b.
func Lerp(a, b kdtree.Point, t float64) kdtree.Point {
	return kdtree.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: b.Z,
	}
}
