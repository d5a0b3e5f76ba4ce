package database

import (
	"context"

	"github.com/go-sod/rrt/internal/database"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Load when no plan has the given id.
var ErrNotFound = database.ErrNotFound

// Store keeps finished plans addressable by id and by trajectory.
type Store interface {
	SaveMany(ctx context.Context, plans []model.Plan) error
	Load(ctx context.Context, id uuid.UUID) (model.Plan, error)
	FindByTrajectory(ctx context.Context, trajectoryID int) ([]model.Plan, error)
	Trajectories(ctx context.Context) ([]int, error)
	DeleteMany(ctx context.Context, plans []model.Plan) error
}
