package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/go-sod/rrt/internal/geom"
	"github.com/go-sod/rrt/pkg/container/kdtree"
	"github.com/paulmach/orb"
)

var (
	ErrInvalidRequest = errors.New("invalid plan request")
	ErrNoPath         = errors.New("no path found")
)

// NoPathError reports a search that spent its iteration budget. It matches
// ErrNoPath and keeps the seed so the search can be replayed.
type NoPathError struct {
	Seed       uint32
	Iterations int
	Nodes      int
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("%d iterations, %d nodes, seed %d: %v", e.Iterations, e.Nodes, e.Seed, ErrNoPath)
}

func (e *NoPathError) Unwrap() error {
	return ErrNoPath
}

// SeedUsed returns the seed a Plan call searched with, zero when it failed
// before searching.
func SeedUsed(res *Result, err error) uint32 {
	if res != nil {
		return res.Seed
	}
	var noPath *NoPathError
	if errors.As(err, &noPath) {
		return noPath.Seed
	}
	return 0
}

// Bounds is the sampling area.
type Bounds struct {
	MinX float64 `json:"minX" toml:"min_x"`
	MinY float64 `json:"minY" toml:"min_y"`
	MaxX float64 `json:"maxX" toml:"max_x"`
	MaxY float64 `json:"maxY" toml:"max_y"`
}

func (b Bounds) bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

func (b Bounds) Contains(p kdtree.Point) bool {
	return b.bound().Contains(orb.Point{p.X, p.Y})
}

// Request describes one planning problem. StepSize, GoalRadius and
// MaxIterations must be positive, so zero takes the planner default.
// RewireRadius and GoalBias are meaningful at zero (no rewiring, no goal
// sampling) and take the default only when nil.
type Request struct {
	Start         kdtree.Point `json:"start" toml:"start"`
	Goal          kdtree.Point `json:"goal" toml:"goal"`
	Bounds        Bounds       `json:"bounds" toml:"bounds"`
	Obstacles     []Obstacle   `json:"obstacles,omitempty" toml:"obstacles"`
	StepSize      float64      `json:"stepSize,omitempty" toml:"step_size"`
	GoalRadius    float64      `json:"goalRadius,omitempty" toml:"goal_radius"`
	RewireRadius  *float64     `json:"rewireRadius,omitempty" toml:"rewire_radius"`
	MaxIterations int          `json:"maxIterations,omitempty" toml:"max_iterations"`
	GoalBias      *float64     `json:"goalBias,omitempty" toml:"goal_bias"`
	Seed          uint32       `json:"seed,omitempty" toml:"seed"`
	TrajectoryID  int          `json:"trajectoryId,omitempty" toml:"trajectory_id"`
	IncludeTree   bool         `json:"includeTree,omitempty" toml:"include_tree"`
}

func (r *Request) Validate() error {
	if err := geom.Validate(r.Start, r.Goal); err != nil {
		return fmt.Errorf("%w: %w", err, ErrInvalidRequest)
	}
	b := r.Bounds
	if err := geom.Validate(kdtree.Point{X: b.MinX, Y: b.MinY}, kdtree.Point{X: b.MaxX, Y: b.MaxY}); err != nil {
		return fmt.Errorf("bounds: %w: %w", err, ErrInvalidRequest)
	}
	if b.MinX >= b.MaxX || b.MinY >= b.MaxY {
		return fmt.Errorf("bounds are empty: %w", ErrInvalidRequest)
	}
	if !b.Contains(r.Start) || !b.Contains(r.Goal) {
		return fmt.Errorf("start and goal must lie within bounds: %w", ErrInvalidRequest)
	}
	if r.StepSize < 0 || r.GoalRadius < 0 || r.MaxIterations < 0 {
		return fmt.Errorf("negative tuning value: %w", ErrInvalidRequest)
	}
	if r.RewireRadius != nil && (*r.RewireRadius < 0 || math.IsNaN(*r.RewireRadius)) {
		return fmt.Errorf("rewire radius must not be negative: %w", ErrInvalidRequest)
	}
	if r.GoalBias != nil && !(*r.GoalBias >= 0 && *r.GoalBias <= 1) {
		return fmt.Errorf("goal bias must be within [0, 1]: %w", ErrInvalidRequest)
	}
	return nil
}

// Float64 returns a pointer to v, for the optional tuning fields.
func Float64(v float64) *float64 {
	return &v
}

// LoadScenario reads a request from a TOML file. Unknown keys are rejected.
func LoadScenario(path string) (*Request, error) {
	var req Request
	md, err := toml.DecodeFile(path, &req)
	if err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("scenario %s has unknown keys %v: %w", path, undecoded, ErrInvalidRequest)
	}
	return &req, nil
}
