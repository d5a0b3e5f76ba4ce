package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/go-sod/rrt/pkg/container/kdtree"
)

func TestSteer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		from     kdtree.Point
		to       kdtree.Point
		step     float64
		expected kdtree.Point
	}{
		{name: "within_step", from: kdtree.Point{}, to: kdtree.Point{X: 1, Y: 1, Z: 2}, step: 5, expected: kdtree.Point{X: 1, Y: 1, Z: 2}},
		{name: "clamped", from: kdtree.Point{}, to: kdtree.Point{X: 6, Y: 8, Z: 1}, step: 5, expected: kdtree.Point{X: 3, Y: 4, Z: 1}},
		{name: "same_point", from: kdtree.Point{X: 2, Y: 2}, to: kdtree.Point{X: 2, Y: 2}, step: 1, expected: kdtree.Point{X: 2, Y: 2}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := Steer(test.from, test.to, test.step)
			if !got.Equal(test.expected) {
				t.Errorf("steering from %v to %v, got: %v, expected: %v", test.from, test.to, got, test.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		points []kdtree.Point
		err    error
	}{
		{name: "positive", points: []kdtree.Point{{X: 1, Y: 2, Z: 3}, {}}},
		{name: "nan", points: []kdtree.Point{{}, {X: math.NaN()}}, err: ErrNonFinite},
		{name: "inf", points: []kdtree.Point{{Z: math.Inf(-1)}}, err: ErrNonFinite},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(test.points...)
			if !errors.Is(err, test.err) {
				t.Errorf("validating %v, got: %v, expected: %v", test.points, err, test.err)
			}
		})
	}
}
