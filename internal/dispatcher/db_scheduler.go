package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/internal/plan/model"
)

type dbSchedulerConfig struct {
	maxPlansStored int
	maxStorageTime time.Duration
	rebuildDBTime  time.Duration
	deps           pullDependencies
}

func newDBScheduler(config dbSchedulerConfig) *dbScheduler {
	return &dbScheduler{opts: config, now: time.Now}
}

// The scheduler deletes old plans from the store. It can cap the number of
// plans per trajectory, drop plans past their storage time, or both.
type dbScheduler struct {
	opts dbSchedulerConfig
	now  func() time.Time
}

// processOutdated deletes the plans of a trajectory older than maxStorageTime.
func (s *dbScheduler) processOutdated(ctx context.Context, trajectoryID int) error {
	plans, err := s.opts.deps.fetchByTrajectory(ctx, trajectoryID)
	if err != nil {
		return fmt.Errorf("unable find plans of trajectory %d: %w", trajectoryID, err)
	}

	deadline := s.now().Add(-s.opts.maxStorageTime)
	var outdated []model.Plan
	for _, p := range plans {
		if p.CreatedAt.Before(deadline) {
			outdated = append(outdated, p)
		}
	}
	if err := s.opts.deps.deletePlans(ctx, outdated); err != nil {
		return fmt.Errorf("unable delete outdated plans of trajectory %d: %w", trajectoryID, err)
	}
	return nil
}

// processOverSize keeps the newest maxPlansStored plans of a trajectory.
func (s *dbScheduler) processOverSize(ctx context.Context, trajectoryID int) error {
	plans, err := s.opts.deps.fetchByTrajectory(ctx, trajectoryID)
	if err != nil {
		return fmt.Errorf("unable find plans of trajectory %d: %w", trajectoryID, err)
	}
	if len(plans) <= s.opts.maxPlansStored {
		return nil
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	if err := s.opts.deps.deletePlans(ctx, plans[:len(plans)-s.opts.maxPlansStored]); err != nil {
		return fmt.Errorf("unable delete oversize plans of trajectory %d: %w", trajectoryID, err)
	}
	return nil
}

func (s *dbScheduler) rebuild(ctx context.Context) error {
	keys, err := s.opts.deps.fetchKeys(ctx)
	if err != nil {
		return fmt.Errorf("unable fetch trajectories: %w", err)
	}
	for _, id := range keys {
		if s.opts.maxStorageTime > 0 {
			if err := s.processOutdated(ctx, id); err != nil {
				return err
			}
		}
		if s.opts.maxPlansStored > 0 {
			if err := s.processOverSize(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *dbScheduler) schedule(ctx context.Context) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(s.opts.rebuildDBTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil {
				logger.Errorf("unable db rebuild: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
