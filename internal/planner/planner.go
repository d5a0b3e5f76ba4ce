// Package planner grows an RRT* tree over the kdtree index to connect a start
// pose with a goal pose while avoiding polygonal obstacles.
package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/go-sod/rrt/internal/geom"
	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/pkg/container/kdtree"
	"github.com/go-sod/rrt/pkg/pqueue"
	"github.com/valyala/fastrand"
)

// cancelCheckEvery is how many iterations run between context checks.
const cancelCheckEvery = 64

func WithStepSize(v float64) Option {
	return func(p *Planner) {
		p.opts.stepSize = v
	}
}

func WithGoalRadius(v float64) Option {
	return func(p *Planner) {
		p.opts.goalRadius = v
	}
}

func WithRewireRadius(v float64) Option {
	return func(p *Planner) {
		p.opts.rewireRadius = v
	}
}

func WithMaxIterations(n int) Option {
	return func(p *Planner) {
		p.opts.maxIterations = n
	}
}

func WithGoalBias(v float64) Option {
	return func(p *Planner) {
		p.opts.goalBias = v
	}
}

func WithDistance(fn geom.DistanceFn) Option {
	return func(p *Planner) {
		p.distFn = fn
	}
}

type Option func(*Planner)

type Options struct {
	stepSize      float64
	goalRadius    float64
	rewireRadius  float64
	maxIterations int
	goalBias      float64
}

func New(opts ...Option) (*Planner, error) {
	p := &Planner{
		opts: Options{
			stepSize:      1,
			goalRadius:    1,
			rewireRadius:  3,
			maxIterations: 20000,
			goalBias:      0.05,
		},
		distFn: geom.EuclideanDistance,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.opts.stepSize <= 0 || p.opts.goalRadius <= 0 || p.opts.maxIterations <= 0 {
		return nil, fmt.Errorf("step size, goal radius and max iterations must be positive: %w", ErrInvalidRequest)
	}
	if p.opts.rewireRadius < 0 || p.opts.goalBias < 0 || p.opts.goalBias > 1 {
		return nil, fmt.Errorf("rewire radius or goal bias out of range: %w", ErrInvalidRequest)
	}
	return p, nil
}

// Planner is stateless between calls and safe for concurrent use; every Plan
// call builds its own index.
type Planner struct {
	opts   Options
	distFn geom.DistanceFn
}

// Edge is a planning edge from a node to its parent.
type Edge struct {
	From kdtree.Point `json:"from"`
	To   kdtree.Point `json:"to"`
}

type Result struct {
	Path       []kdtree.Point `json:"path"`
	Cost       float64        `json:"cost"`
	Iterations int            `json:"iterations"`
	Nodes      int            `json:"nodes"`
	Seed       uint32         `json:"seed"`
	Edges      []Edge         `json:"edges,omitempty"`
}

// vertex is the planning state of an index node. The index itself knows
// nothing about costs or planning parents.
type vertex struct {
	parent   *kdtree.Node
	cost     float64
	children []*kdtree.Node
}

type search struct {
	*Planner
	req       Request
	tree      *kdtree.Tree
	graph     map[*kdtree.Node]*vertex
	obstacles *Obstacles
	rng       fastrand.RNG
}

func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	logger := logging.FromContext(ctx)
	p.applyDefaults(&req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	obstacles, err := NewObstacles(req.Obstacles)
	if err != nil {
		return nil, err
	}
	if obstacles.Contains(req.Start) || obstacles.Contains(req.Goal) {
		return nil, fmt.Errorf("start or goal inside an obstacle: %w", ErrInvalidRequest)
	}
	if req.Seed == 0 {
		req.Seed = fastrand.Uint32() | 1
	}

	s := &search{
		Planner:   p,
		req:       req,
		tree:      kdtree.NewWithSeed(req.Start),
		graph:     make(map[*kdtree.Node]*vertex),
		obstacles: obstacles,
	}
	s.rng.Seed(req.Seed)
	s.graph[s.tree.Root()] = &vertex{}

	goalNode, iterations, err := s.grow(ctx)
	if err != nil {
		return nil, err
	}
	if goalNode == nil {
		logger.Debugf("planner: no path after %d iterations, %d nodes", iterations, s.tree.Len())
		return nil, &NoPathError{Seed: req.Seed, Iterations: iterations, Nodes: s.tree.Len()}
	}

	res := &Result{
		Path:       s.path(goalNode),
		Iterations: iterations,
		Nodes:      s.tree.Len(),
		Seed:       req.Seed,
	}
	for i := 1; i < len(res.Path); i++ {
		res.Cost += p.distFn(res.Path[i-1], res.Path[i])
	}
	if req.IncludeTree {
		res.Edges = s.edges()
	}
	logger.Debugf("planner: path of %d poses, cost %.3f, %d iterations", len(res.Path), res.Cost, iterations)
	return res, nil
}

func (p *Planner) applyDefaults(req *Request) {
	if req.StepSize == 0 {
		req.StepSize = p.opts.stepSize
	}
	if req.GoalRadius == 0 {
		req.GoalRadius = p.opts.goalRadius
	}
	if req.RewireRadius == nil {
		req.RewireRadius = Float64(p.opts.rewireRadius)
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = p.opts.maxIterations
	}
	if req.GoalBias == nil {
		req.GoalBias = Float64(p.opts.goalBias)
	}
}

// grow extends the tree until a node reaches the goal region or the iteration
// budget is spent.
func (s *search) grow(ctx context.Context) (*kdtree.Node, int, error) {
	if s.reachesGoal(s.tree.Root()) {
		return s.tree.Root(), 0, nil
	}
	for i := 1; i <= s.req.MaxIterations; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, i, fmt.Errorf("planning interrupted: %w", err)
			}
		}

		sample := s.sample()
		nearest := s.tree.Nearest(sample)
		candidate := geom.Steer(nearest.Point(), sample, s.req.StepSize)
		if !s.obstacles.SegmentClear(nearest.Point(), candidate) {
			continue
		}

		near := s.tree.RangeQuery(candidate, *s.req.RewireRadius)
		parent, cost := s.chooseParent(nearest, near, candidate)
		node := s.tree.InsertTagged(candidate, s.req.TrajectoryID, i)
		s.attach(node, parent, cost)
		s.rewire(node, near)

		if s.reachesGoal(node) {
			return node, i, nil
		}
	}
	return nil, s.req.MaxIterations, nil
}

func (s *search) sample() kdtree.Point {
	if s.uniform() < *s.req.GoalBias {
		return s.req.Goal
	}
	b := s.req.Bounds
	return kdtree.Point{
		X: b.MinX + s.uniform()*(b.MaxX-b.MinX),
		Y: b.MinY + s.uniform()*(b.MaxY-b.MinY),
		Z: s.req.Goal.Z,
	}
}

func (s *search) uniform() float64 {
	return float64(s.rng.Uint32()) / math.MaxUint32
}

// chooseParent picks the collision free neighbour giving the cheapest path
// to candidate. nearest is known to be reachable and is always a fallback.
func (s *search) chooseParent(nearest *kdtree.Node, near []*kdtree.Node, candidate kdtree.Point) (*kdtree.Node, float64) {
	queue := pqueue.New(pqueue.WithCap(uint(len(near) + 1)))
	queue.Push(nearest, s.costVia(nearest, candidate))
	for _, n := range near {
		if n != nearest {
			queue.Push(n, s.costVia(n, candidate))
		}
	}
	for queue.Len() > 0 {
		v, cost := queue.HeadWithPriority()
		n := v.(*kdtree.Node)
		if n == nearest || s.obstacles.SegmentClear(n.Point(), candidate) {
			return n, cost
		}
	}
	return nearest, s.costVia(nearest, candidate)
}

func (s *search) costVia(n *kdtree.Node, p kdtree.Point) float64 {
	return s.graph[n].cost + s.distFn(n.Point(), p)
}

func (s *search) attach(node, parent *kdtree.Node, cost float64) {
	s.graph[node] = &vertex{parent: parent, cost: cost}
	pv := s.graph[parent]
	pv.children = append(pv.children, node)
}

// rewire hands neighbours over to node when that shortens their path and
// pushes the saving down their subtrees.
func (s *search) rewire(node *kdtree.Node, near []*kdtree.Node) {
	nv := s.graph[node]
	for _, n := range near {
		if n == nv.parent {
			continue
		}
		v := s.graph[n]
		cost := s.costVia(node, n.Point())
		if cost >= v.cost || s.descends(node, n) || !s.obstacles.SegmentClear(node.Point(), n.Point()) {
			continue
		}
		s.detach(n)
		v.parent = node
		nv.children = append(nv.children, n)
		s.propagate(n, v.cost-cost)
	}
}

// descends reports whether n hangs below ancestor in the planning tree.
func (s *search) descends(n, ancestor *kdtree.Node) bool {
	for cur := s.graph[n].parent; cur != nil; cur = s.graph[cur].parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (s *search) detach(n *kdtree.Node) {
	pv := s.graph[s.graph[n].parent]
	for i, c := range pv.children {
		if c == n {
			pv.children = append(pv.children[:i], pv.children[i+1:]...)
			return
		}
	}
}

func (s *search) propagate(n *kdtree.Node, saving float64) {
	stack := []*kdtree.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := s.graph[cur]
		v.cost -= saving
		stack = append(stack, v.children...)
	}
}

func (s *search) reachesGoal(n *kdtree.Node) bool {
	p := n.Point()
	if p.Distance2(s.req.Goal) > s.req.GoalRadius*s.req.GoalRadius {
		return false
	}
	return s.obstacles.SegmentClear(p, s.req.Goal)
}

// path returns the poses from the start to the goal through n.
func (s *search) path(n *kdtree.Node) []kdtree.Point {
	var reversed []kdtree.Point
	if !n.Point().Equal(s.req.Goal) {
		reversed = append(reversed, s.req.Goal)
	}
	for cur := n; cur != nil; cur = s.graph[cur].parent {
		reversed = append(reversed, cur.Point())
	}
	path := make([]kdtree.Point, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}

func (s *search) edges() []Edge {
	edges := make([]Edge, 0, s.tree.Len()-1)
	s.tree.Walk(func(n *kdtree.Node) bool {
		if parent := s.graph[n].parent; parent != nil {
			edges = append(edges, Edge{From: n.Point(), To: parent.Point()})
		}
		return true
	})
	return edges
}
