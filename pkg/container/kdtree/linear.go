package kdtree

import "math"

// Linear answers the same queries as Tree by looking at every node. It exists
// to check the pruning of Tree and has no place on a hot path.
type Linear struct {
	tree *Tree
}

func NewLinear(t *Tree) *Linear {
	return &Linear{tree: t}
}

func (l *Linear) Nearest(target Point) *Node {
	var (
		best   *Node
		bestD2 = math.Inf(1)
	)
	l.scan(func(n *Node) {
		if d2 := n.distance2(target); n.closer(d2, best, bestD2) {
			best, bestD2 = n, d2
		}
	})
	return best
}

func (l *Linear) RangeQuery(target Point, radius float64) []*Node {
	var nodes []*Node
	radius2 := radius * radius
	l.scan(func(n *Node) {
		if n.distance2(target) < radius2 {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

// scan visits the tree breadth first.
func (l *Linear) scan(fn func(n *Node)) {
	queue := []*Node{l.tree.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		fn(n)
		if n.left != nil {
			queue = append(queue, n.left)
		}
		if n.right != nil {
			queue = append(queue, n.right)
		}
	}
}
