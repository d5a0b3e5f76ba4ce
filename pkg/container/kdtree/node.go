package kdtree

import "math"

// Node is a stored point. Nodes are created by Tree.Insert only and live as
// long as the tree that owns them.
type Node struct {
	point  Point
	tagA   int
	tagB   int
	seq    uint64
	left   *Node
	right  *Node
	parent *Node
}

func (n *Node) Point() Point {
	return n.point
}

// TagA and TagB are the caller's labels given at insertion. The tree never
// looks at them.
func (n *Node) TagA() int {
	return n.tagA
}

func (n *Node) TagB() int {
	return n.tagB
}

// Parent returns the node this one hangs from in the tree, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Left() *Node {
	return n.left
}

func (n *Node) Right() *Node {
	return n.right
}

// Seq is the insertion order of the node, the root is 0.
func (n *Node) Seq() uint64 {
	return n.seq
}

// goLeft reports whether p belongs to the left subtree of n at the given depth.
// Ties route left; NaN comparisons are false and route right.
func (n *Node) goLeft(p Point, depth int) bool {
	return p.Dim(depth) <= n.point.Dim(depth)
}

// children returns the natural child for p first and the sibling second.
func (n *Node) children(p Point, depth int) (near, far *Node) {
	if n.goLeft(p, depth) {
		return n.left, n.right
	}
	return n.right, n.left
}

// plane2 is the squared distance from p to the splitting plane of n.
func (n *Node) plane2(p Point, depth int) float64 {
	d := p.Dim(depth) - n.point.Dim(depth)
	return d * d
}

// distance2 is the squared distance from p to n. NaN is reported as +Inf so
// that a node with broken coordinates never shadows a real one.
func (n *Node) distance2(p Point) float64 {
	d2 := n.point.Distance2(p)
	if math.IsNaN(d2) {
		return math.Inf(1)
	}
	return d2
}

// closer reports whether a node at distance d2 beats the current best.
// Equal distances are resolved in favour of the earlier insertion.
func (n *Node) closer(d2 float64, best *Node, bestD2 float64) bool {
	if best == nil {
		return true
	}
	if d2 < bestD2 {
		return true
	}
	return d2 == bestD2 && n.seq < best.seq
}
