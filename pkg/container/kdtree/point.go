package kdtree

import "math"

// Point is a pose candidate. Only X and Y take part in ordering and
// distance, Z is carried along untouched.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point) Dim(axis int) float64 {
	if axis%2 == 0 {
		return p.X
	}
	return p.Y
}

// Distance2 returns the squared euclidean distance in the x-y plane.
func (p Point) Distance2(p1 Point) float64 {
	dx := p.X - p1.X
	dy := p.Y - p1.Y
	return dx*dx + dy*dy
}

func (p Point) Finite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Point) Equal(p1 Point) bool {
	return p.X == p1.X && p.Y == p1.Y && p.Z == p1.Z
}
