package model

import (
	"fmt"
	"time"

	"github.com/go-sod/rrt/internal/planner"
	"github.com/google/uuid"
)

type Status uint8

const (
	StatusSolved Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSolved {
		return "solved"
	}
	return "failed"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "solved":
		*s = StatusSolved
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown plan status %q", text)
	}
	return nil
}

// NewPlan records the outcome of a planning request. A nil result means the
// planner failed with planErr.
func NewPlan(req planner.Request, res *planner.Result, planErr error, createdAt time.Time) Plan {
	p := Plan{
		ID:           uuid.New(),
		TrajectoryID: req.TrajectoryID,
		Status:       StatusSolved,
		Request:      req,
		Result:       res,
		CreatedAt:    createdAt.UTC(),
	}
	if planErr != nil || res == nil {
		p.Status = StatusFailed
		p.Result = nil
	}
	if planErr != nil {
		p.Error = planErr.Error()
	}
	return p
}

type Plan struct {
	ID           uuid.UUID       `json:"id"`
	TrajectoryID int             `json:"trajectoryId"`
	Status       Status          `json:"status"`
	Request      planner.Request `json:"request"`
	Result       *planner.Result `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (p Plan) IsSolved() bool {
	return p.Status == StatusSolved
}
