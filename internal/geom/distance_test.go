package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/go-sod/rrt/pkg/container/kdtree"
)

func TestChebyshevDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        kdtree.Point
		p1       kdtree.Point
		expected float64
	}{
		{name: "positive", p: kdtree.Point{X: 1.2, Y: 2.0}, p1: kdtree.Point{X: 2.0, Y: 3.0}, expected: 1},
		{name: "positive", p: kdtree.Point{X: 10, Y: 2.0}, p1: kdtree.Point{X: 5, Y: 3.0}, expected: 5},
		{name: "ignores_z", p: kdtree.Point{X: 1, Y: 1, Z: 100}, p1: kdtree.Point{X: 1, Y: 3}, expected: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ChebyshevDistance(test.p, test.p1)
			if got != test.expected {
				t.Errorf(
					"the distance obtained does not correspond to the expected distance, got %f, expected %f",
					got, test.expected)
			}
		})
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        kdtree.Point
		p1       kdtree.Point
		expected float64
	}{
		{name: "positive", p: kdtree.Point{X: 1.2, Y: 2.0}, p1: kdtree.Point{X: 2.0, Y: 3.0}, expected: 1.2806248474865698},
		{name: "positive", p: kdtree.Point{X: 10, Y: 2.0}, p1: kdtree.Point{X: 5, Y: 3.0}, expected: 5.0990195135927845},
		{name: "ignores_z", p: kdtree.Point{X: 0, Y: 0, Z: 7}, p1: kdtree.Point{X: 3, Y: 4}, expected: 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := EuclideanDistance(test.p, test.p1)
			if math.Abs(got-test.expected) > 1e-12 {
				t.Errorf(
					"the distance obtained does not correspond to the expected distance, got %f, expected %f",
					got, test.expected)
			}
		})
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        kdtree.Point
		p1       kdtree.Point
		expected float64
	}{
		{name: "positive", p: kdtree.Point{X: 1, Y: 2.0}, p1: kdtree.Point{X: 2.0, Y: 3.5}, expected: 2.5},
		{name: "positive", p: kdtree.Point{X: 10, Y: 2.0}, p1: kdtree.Point{X: 5, Y: 3.0}, expected: 6},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ManhattanDistance(test.p, test.p1)
			if got != test.expected {
				t.Errorf(
					"the distance obtained does not correspond to the expected distance, got %f, expected %f",
					got, test.expected)
			}
		})
	}
}

func TestDistanceFuncFor(t *testing.T) {
	tests := []struct {
		name     string
		metric   string
		expected float64
		err      error
	}{
		{name: "default", metric: "", expected: 5},
		{name: "euclidean", metric: MetricEuclidean, expected: 5},
		{name: "manhattan", metric: MetricManhattan, expected: 7},
		{name: "chebyshev", metric: MetricChebyshev, expected: 4},
		{name: "unknown", metric: "cosine", err: ErrUnknownMetric},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fn, err := DistanceFuncFor(test.metric)
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Errorf("expected error %v, got %v", test.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("the error should not be returned: %v", err)
			}
			if got := fn(kdtree.Point{}, kdtree.Point{X: 3, Y: 4}); got != test.expected {
				t.Errorf("distance for %s, got %f, expected %f", test.metric, got, test.expected)
			}
		})
	}
}
