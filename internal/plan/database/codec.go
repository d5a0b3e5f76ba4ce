package database

import (
	"bytes"
	"fmt"
	"time"

	"github.com/davecgh/go-xdr/xdr2"
	"github.com/go-sod/rrt/internal/byteutil"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/pkg/container/kdtree"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// recordVersion is the first byte of every stored value.
const recordVersion byte = 1

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// record is the XDR layout of a plan. XDR has no native int, time or optional
// float, so those are widened or flagged explicitly.
type record struct {
	ID           [16]byte
	TrajectoryID int64
	Status       uint32
	Error        string
	CreatedAt    int64
	Request      requestRecord
	Solved       bool
	Result       resultRecord
}

type requestRecord struct {
	Start         kdtree.Point
	Goal          kdtree.Point
	Bounds        planner.Bounds
	Obstacles     []planner.Obstacle
	StepSize      float64
	GoalRadius    float64
	HasRewire     bool
	RewireRadius  float64
	MaxIterations int64
	HasGoalBias   bool
	GoalBias      float64
	Seed          uint32
	IncludeTree   bool
}

type resultRecord struct {
	Path       []kdtree.Point
	Cost       float64
	Iterations int64
	Nodes      int64
	Seed       uint32
	Edges      []planner.Edge
}

func Encode(p model.Plan) ([]byte, error) {
	buf := byteutil.GetBytesBuf()
	defer byteutil.PutBytesBuf(buf)
	buf.Reset()

	if _, err := xdr.Marshal(buf, toRecord(p)); err != nil {
		return nil, fmt.Errorf("xdr marshal plan %s: %w", p.ID, err)
	}
	out := make([]byte, 1, buf.Len()/2+1)
	out[0] = recordVersion
	return encoder.EncodeAll(buf.Bytes(), out), nil
}

func Decode(data []byte) (model.Plan, error) {
	if len(data) == 0 || data[0] != recordVersion {
		return model.Plan{}, fmt.Errorf("unsupported plan record version")
	}
	raw, err := decoder.DecodeAll(data[1:], nil)
	if err != nil {
		return model.Plan{}, fmt.Errorf("decompress plan: %w", err)
	}
	var r record
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), &r); err != nil {
		return model.Plan{}, fmt.Errorf("xdr unmarshal plan: %w", err)
	}
	return fromRecord(r), nil
}

func toRecord(p model.Plan) record {
	req := p.Request
	r := record{
		ID:           p.ID,
		TrajectoryID: int64(p.TrajectoryID),
		Status:       uint32(p.Status),
		Error:        p.Error,
		CreatedAt:    p.CreatedAt.UnixNano(),
		Request: requestRecord{
			Start:         req.Start,
			Goal:          req.Goal,
			Bounds:        req.Bounds,
			Obstacles:     req.Obstacles,
			StepSize:      req.StepSize,
			GoalRadius:    req.GoalRadius,
			MaxIterations: int64(req.MaxIterations),
			Seed:          req.Seed,
			IncludeTree:   req.IncludeTree,
		},
	}
	if req.RewireRadius != nil {
		r.Request.HasRewire, r.Request.RewireRadius = true, *req.RewireRadius
	}
	if req.GoalBias != nil {
		r.Request.HasGoalBias, r.Request.GoalBias = true, *req.GoalBias
	}
	if res := p.Result; res != nil {
		r.Solved = true
		r.Result = resultRecord{
			Path:       res.Path,
			Cost:       res.Cost,
			Iterations: int64(res.Iterations),
			Nodes:      int64(res.Nodes),
			Seed:       res.Seed,
			Edges:      res.Edges,
		}
	}
	return r
}

func fromRecord(r record) model.Plan {
	req := r.Request
	p := model.Plan{
		ID:           uuid.UUID(r.ID),
		TrajectoryID: int(r.TrajectoryID),
		Status:       model.Status(r.Status),
		Error:        r.Error,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
		Request: planner.Request{
			Start:         req.Start,
			Goal:          req.Goal,
			Bounds:        req.Bounds,
			Obstacles:     nilIfEmptyObstacles(req.Obstacles),
			StepSize:      req.StepSize,
			GoalRadius:    req.GoalRadius,
			MaxIterations: int(req.MaxIterations),
			Seed:          req.Seed,
			TrajectoryID:  int(r.TrajectoryID),
			IncludeTree:   req.IncludeTree,
		},
	}
	if req.HasRewire {
		p.Request.RewireRadius = planner.Float64(req.RewireRadius)
	}
	if req.HasGoalBias {
		p.Request.GoalBias = planner.Float64(req.GoalBias)
	}
	if r.Solved {
		res := r.Result
		p.Result = &planner.Result{
			Path:       nilIfEmptyPath(res.Path),
			Cost:       res.Cost,
			Iterations: int(res.Iterations),
			Nodes:      int(res.Nodes),
			Seed:       res.Seed,
			Edges:      nilIfEmptyEdges(res.Edges),
		}
	}
	return p
}

// Empty XDR arrays decode as empty slices; the model uses nil for "none".
func nilIfEmptyObstacles(v []planner.Obstacle) []planner.Obstacle {
	if len(v) == 0 {
		return nil
	}
	return v
}

func nilIfEmptyPath(v []kdtree.Point) []kdtree.Point {
	if len(v) == 0 {
		return nil
	}
	return v
}

func nilIfEmptyEdges(v []planner.Edge) []planner.Edge {
	if len(v) == 0 {
		return nil
	}
	return v
}
