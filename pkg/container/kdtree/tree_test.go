package kdtree

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func points(nodes []*Node) []Point {
	out := make([]Point, len(nodes))
	for i, n := range nodes {
		out[i] = n.Point()
	}
	return out
}

func seqs(nodes []*Node) []uint64 {
	out := make([]uint64, len(nodes))
	for i, n := range nodes {
		out[i] = n.Seq()
	}
	return out
}

func randomPoint(rng *fastrand.RNG, span uint32) Point {
	return Point{
		X: float64(rng.Uint32n(span)) / 10,
		Y: float64(rng.Uint32n(span)) / 10,
		Z: float64(rng.Uint32n(span)),
	}
}

// checkInvariant verifies the alternating-axis ordering below every node.
func checkInvariant(t *testing.T, n *Node, depth int) {
	t.Helper()
	if n == nil {
		return
	}
	var walk func(c *Node, left bool)
	walk = func(c *Node, left bool) {
		if c == nil {
			return
		}
		if left {
			assert.LessOrEqual(t, c.point.Dim(depth), n.point.Dim(depth), "left of %v at depth %d", n.point, depth)
		} else {
			assert.Greater(t, c.point.Dim(depth), n.point.Dim(depth), "right of %v at depth %d", n.point, depth)
		}
		walk(c.left, left)
		walk(c.right, left)
	}
	walk(n.left, true)
	walk(n.right, false)
	checkInvariant(t, n.left, depth+1)
	checkInvariant(t, n.right, depth+1)
}

func TestTree_Scenario(t *testing.T) {
	t.Parallel()
	tree := New()
	tree.Insert(Point{X: 1, Y: 1})
	tree.Insert(Point{X: 2, Y: 2})
	tree.Insert(Point{X: 0, Y: 5})

	nearest := tree.Nearest(Point{X: 1.1, Y: 1.2})
	assert.Equal(t, Point{X: 1, Y: 1}, nearest.Point())

	got := tree.RangeQuery(Point{X: 1, Y: 1}, 2.0)
	assert.ElementsMatch(t, []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, points(got))
	assert.Equal(t, 4, tree.Len())
}

func TestTree_PristineSeed(t *testing.T) {
	t.Parallel()
	tree := New()
	require.True(t, tree.Pristine())
	n := tree.Nearest(Point{X: 100, Y: -100})
	assert.Equal(t, Point{}, n.Point())
	assert.Nil(t, n.Parent())

	tree.Insert(Point{X: 3, Y: 4})
	assert.False(t, tree.Pristine())

	seeded := NewWithSeed(Point{})
	assert.False(t, seeded.Pristine())
}

func TestTree_Insert(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		seed   Point
		insert []Point
		left   bool
	}{
		{name: "smaller_x_goes_left", seed: Point{X: 5, Y: 5}, insert: []Point{{X: 1, Y: 9}}, left: true},
		{name: "equal_x_goes_left", seed: Point{X: 5, Y: 5}, insert: []Point{{X: 5, Y: 9}}, left: true},
		{name: "greater_x_goes_right", seed: Point{X: 5, Y: 5}, insert: []Point{{X: 6, Y: 0}}, left: false},
		{name: "nan_goes_right", seed: Point{X: 5, Y: 5}, insert: []Point{{X: math.NaN(), Y: 0}}, left: false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			tree := NewWithSeed(test.seed)
			n := tree.Insert(test.insert[0])
			if test.left {
				assert.Same(t, n, tree.Root().Left())
			} else {
				assert.Same(t, n, tree.Root().Right())
			}
			assert.Same(t, tree.Root(), n.Parent())
		})
	}
}

func TestTree_InsertSecondLevelUsesY(t *testing.T) {
	t.Parallel()
	tree := NewWithSeed(Point{X: 0, Y: 0})
	a := tree.Insert(Point{X: 1, Y: 1})
	b := tree.Insert(Point{X: 2, Y: 1})
	c := tree.Insert(Point{X: 3, Y: 0.5})

	assert.Same(t, a, tree.Root().Right())
	assert.Same(t, b, a.Left())
	assert.Same(t, c, b.Right())
	assert.Same(t, b, c.Parent())
}

func TestTree_InsertDuplicates(t *testing.T) {
	t.Parallel()
	tree := NewWithSeed(Point{X: 1, Y: 1})
	first := tree.InsertTagged(Point{X: 1, Y: 1}, 3, 4)
	second := tree.InsertTagged(Point{X: 1, Y: 1}, 5, 6)

	assert.NotSame(t, first, second)
	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, 3, first.TagA())
	assert.Equal(t, 4, first.TagB())
	assert.Equal(t, 5, second.TagA())
	assert.Equal(t, 6, second.TagB())
	assert.Equal(t, 0, tree.Root().TagA())
	assert.Len(t, tree.RangeQuery(Point{X: 1, Y: 1}, 0.5), 3)
}

func TestTree_NearestAfterInsert(t *testing.T) {
	t.Parallel()
	var rng fastrand.RNG
	rng.Seed(7)
	tree := New()
	for i := 0; i < 500; i++ {
		p := randomPoint(&rng, 1000)
		if p.X == 0 && p.Y == 0 {
			continue
		}
		tree.Insert(p)
		n := tree.Nearest(p)
		require.Equal(t, 0.0, n.Point().Distance2(p))
		require.Equal(t, p.X, n.Point().X)
		require.Equal(t, p.Y, n.Point().Y)
	}
}

func TestTree_MatchesLinear(t *testing.T) {
	t.Parallel()
	for seed := uint32(1); seed <= 20; seed++ {
		var rng fastrand.RNG
		rng.Seed(seed)
		tree := NewWithSeed(randomPoint(&rng, 200))
		for i := 0; i < 300; i++ {
			tree.InsertTagged(randomPoint(&rng, 200), int(seed), i)
		}
		linear := NewLinear(tree)
		for q := 0; q < 100; q++ {
			target := randomPoint(&rng, 240)
			got, want := tree.Nearest(target), linear.Nearest(target)
			if got != want {
				t.Fatalf("seed %d target %v: nearest %s, linear %s", seed, target, spew.Sdump(got.Point()), spew.Sdump(want.Point()))
			}

			radius := float64(rng.Uint32n(60)) / 10
			assert.ElementsMatch(t, seqs(linear.RangeQuery(target, radius)), seqs(tree.RangeQuery(target, radius)),
				"seed %d target %v radius %v", seed, target, radius)
		}
		checkInvariant(t, tree.Root(), 0)
	}
}

func TestTree_TieBreak(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		insert   []Point
		target   Point
		expected Point
	}{
		{
			name:     "first_visited_is_first_inserted",
			insert:   []Point{{X: -1, Y: 0}, {X: 1, Y: 0}},
			target:   Point{X: 0, Y: 0},
			expected: Point{X: -1, Y: 0},
		},
		{
			name:     "first_inserted_on_far_side",
			insert:   []Point{{X: 1, Y: 0}, {X: -1, Y: 0}},
			target:   Point{X: 0, Y: 0},
			expected: Point{X: 1, Y: 0},
		},
		{
			name:     "first_inserted_on_splitting_plane",
			insert:   []Point{{X: 0, Y: 0}, {X: 2, Y: 0}},
			target:   Point{X: 1, Y: 0},
			expected: Point{X: 0, Y: 0},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			tree := NewWithSeed(Point{X: 0, Y: 5})
			for _, p := range test.insert {
				tree.Insert(p)
			}
			assert.Equal(t, test.expected, tree.Nearest(test.target).Point())
			assert.Equal(t, test.expected, NewLinear(tree).Nearest(test.target).Point())
		})
	}
}

func TestTree_RangeBoundary(t *testing.T) {
	t.Parallel()
	target := Point{X: 10, Y: 10}
	tree := NewWithSeed(target)
	tree.Insert(Point{X: 13, Y: 14})

	assert.Equal(t, []Point{target}, points(tree.RangeQuery(target, 5)))
	assert.ElementsMatch(t, []Point{target, {X: 13, Y: 14}}, points(tree.RangeQuery(target, 5+1e-9)))
	assert.Empty(t, tree.RangeQuery(target, 0))
}

func TestTree_QueriesAreReadOnly(t *testing.T) {
	t.Parallel()
	var rng fastrand.RNG
	rng.Seed(11)
	tree := New()
	for i := 0; i < 100; i++ {
		tree.Insert(randomPoint(&rng, 100))
	}
	target := Point{X: 4.2, Y: 7.7}
	first := tree.Nearest(target)
	firstRange := tree.RangeQuery(target, 3)
	assert.Same(t, first, tree.Nearest(target))
	assert.Equal(t, seqs(firstRange), seqs(tree.RangeQuery(target, 3)))
	assert.Equal(t, 101, tree.Len())
}

func TestTree_SortedInsertion(t *testing.T) {
	t.Parallel()
	const size = 20000
	tree := NewWithSeed(Point{X: -1, Y: -1})
	for i := 0; i < size; i++ {
		tree.Insert(Point{X: float64(i), Y: float64(i)})
	}
	n := tree.Nearest(Point{X: size - 1, Y: size - 1})
	assert.Equal(t, Point{X: size - 1, Y: size - 1}, n.Point())
	assert.Len(t, tree.RangeQuery(Point{}, 2*size), size+1)
	assert.Equal(t, size+1, tree.Len())
}

func TestTree_NonFinite(t *testing.T) {
	t.Parallel()
	tree := NewWithSeed(Point{X: 1, Y: 1})
	tree.Insert(Point{X: math.NaN(), Y: 2})
	tree.Insert(Point{X: 3, Y: 3})

	nan := Point{X: math.NaN(), Y: math.NaN()}
	assert.Same(t, tree.Root(), tree.Nearest(nan))
	assert.Same(t, tree.Root(), NewLinear(tree).Nearest(nan))
	assert.Empty(t, tree.RangeQuery(nan, 100))
	assert.Empty(t, tree.RangeQuery(Point{}, math.NaN()))

	assert.Equal(t, Point{X: 3, Y: 3}, tree.Nearest(Point{X: 2.9, Y: 2.9}).Point())
	assert.False(t, nan.Finite())
	assert.True(t, Point{X: 1}.Finite())
}

func TestTree_Walk(t *testing.T) {
	t.Parallel()
	tree := New()
	for i := 1; i <= 10; i++ {
		tree.Insert(Point{X: float64(i % 4), Y: float64(i)})
	}
	var visited int
	tree.Walk(func(n *Node) bool {
		visited++
		if n.Left() != nil {
			assert.Same(t, n, n.Left().Parent())
		}
		if n.Right() != nil {
			assert.Same(t, n, n.Right().Parent())
		}
		return true
	})
	assert.Equal(t, tree.Len(), visited)

	visited = 0
	tree.Walk(func(n *Node) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}
