package geom

import (
	"fmt"
	"math"

	"github.com/go-sod/rrt/pkg/container/kdtree"
)

const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
	MetricChebyshev = "chebyshev"
)

var ErrUnknownMetric = fmt.Errorf("unknown distance metric")

// DistanceFn measures the cost of moving between two poses in the x-y plane.
type DistanceFn func(p, p1 kdtree.Point) float64

func DistanceFuncFor(name string) (DistanceFn, error) {
	switch name {
	case MetricEuclidean, "":
		return EuclideanDistance, nil
	case MetricManhattan:
		return ManhattanDistance, nil
	case MetricChebyshev:
		return ChebyshevDistance, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
}

func EuclideanDistance(p, p1 kdtree.Point) float64 {
	return math.Sqrt(p.Distance2(p1))
}

func ChebyshevDistance(p, p1 kdtree.Point) float64 {
	return math.Max(math.Abs(p.X-p1.X), math.Abs(p.Y-p1.Y))
}

func ManhattanDistance(p, p1 kdtree.Point) float64 {
	return math.Abs(p.X-p1.X) + math.Abs(p.Y-p1.Y)
}
