// Package kdtree is an incrementally built 2-D tree answering nearest
// neighbour and radius queries over the x-y plane. Splitting axes alternate
// with depth, x at even depths and y at odd ones; ties go to the left.
//
// The tree is never empty: New seeds the root at the origin. It is not
// rebalanced, so insertion order decides its shape, and it is not safe for
// concurrent use.
package kdtree

import "math"

// New returns a tree seeded with a node at the origin.
func New() *Tree {
	t := NewWithSeed(Point{})
	t.pristine = true
	return t
}

func NewWithSeed(seed Point) *Tree {
	return &Tree{
		root: &Node{point: seed},
		len:  1,
	}
}

type Tree struct {
	root     *Node
	len      int
	pristine bool
}

// frame is a pending visit of a subtree during an iterative traversal.
type frame struct {
	node  *Node
	depth int
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Len() int {
	return t.len
}

// Pristine reports whether the tree holds nothing but the default origin
// seed, in which case query results do not describe caller data.
func (t *Tree) Pristine() bool {
	return t.pristine
}

func (t *Tree) Insert(p Point) *Node {
	return t.InsertTagged(p, 0, 0)
}

// InsertTagged adds p as a new leaf and returns it. Duplicates are kept as
// separate nodes.
func (t *Tree) InsertTagged(p Point, tagA, tagB int) *Node {
	n := &Node{point: p, tagA: tagA, tagB: tagB, seq: uint64(t.len)}
	current, depth := t.root, 0
	for {
		if current.goLeft(p, depth) {
			if current.left == nil {
				current.left = n
				break
			}
			current = current.left
		} else {
			if current.right == nil {
				current.right = n
				break
			}
			current = current.right
		}
		depth++
	}
	n.parent = current
	t.len++
	t.pristine = false
	return n
}

// Nearest returns the stored node closest to target. Among equally close
// nodes the earliest inserted one wins.
func (t *Tree) Nearest(target Point) *Node {
	var (
		best   *Node
		bestD2 = math.Inf(1)
	)

	path := descend(nil, target, t.root, 0)
	var current frame
	for path, current = popLast(path); current.node != nil; path, current = popLast(path) {
		n := current.node
		if d2 := n.distance2(target); n.closer(d2, best, bestD2) {
			best, bestD2 = n, d2
		}
		// >= rather than > keeps equidistant nodes on the plane reachable for
		// the insertion order tie-break.
		if bestD2 >= n.plane2(target, current.depth) {
			_, far := n.children(target, current.depth)
			path = descend(path, target, far, current.depth+1)
		}
	}
	return best
}

// RangeQuery returns every node strictly closer than radius to target, in
// traversal order.
func (t *Tree) RangeQuery(target Point, radius float64) []*Node {
	var (
		nodes   []*Node
		radius2 = radius * radius
	)

	stack := []frame{{node: t.root}}
	var current frame
	for stack, current = popLast(stack); current.node != nil; stack, current = popLast(stack) {
		n := current.node
		if n.distance2(target) < radius2 {
			nodes = append(nodes, n)
		}
		near, far := n.children(target, current.depth)
		// far is pushed first so the natural side is explored first.
		if far != nil && radius2 > n.plane2(target, current.depth) {
			stack = append(stack, frame{node: far, depth: current.depth + 1})
		}
		if near != nil {
			stack = append(stack, frame{node: near, depth: current.depth + 1})
		}
	}
	return nodes
}

// Walk calls fn for every node in pre-order until fn returns false.
func (t *Tree) Walk(fn func(n *Node) bool) {
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
}

// descend pushes the natural search path for target starting at n.
func descend(path []frame, target Point, n *Node, depth int) []frame {
	for n != nil {
		path = append(path, frame{node: n, depth: depth})
		n, _ = n.children(target, depth)
		depth++
	}
	return path
}

func popLast(arr []frame) ([]frame, frame) {
	l := len(arr) - 1
	if l < 0 {
		return arr, frame{}
	}
	return arr[:l], arr[l]
}
