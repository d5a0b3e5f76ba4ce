package dispatcher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/google/uuid"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory plan store for tests.
type memStore struct {
	mtx   sync.Mutex
	plans map[uuid.UUID]model.Plan
	saves int
	fail  bool
	// when set, SaveMany waits for it to be closed
	block chan struct{}
}

var _ planDb.Store = (*memStore)(nil)

func newMemStore(plans ...model.Plan) *memStore {
	s := &memStore{plans: map[uuid.UUID]model.Plan{}}
	for _, p := range plans {
		s.plans[p.ID] = p
	}
	return s
}

func (s *memStore) SaveMany(_ context.Context, plans []model.Plan) error {
	s.mtx.Lock()
	block := s.block
	s.mtx.Unlock()
	if block != nil {
		<-block
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.fail {
		return errStore
	}
	s.saves++
	for _, p := range plans {
		s.plans[p.ID] = p
	}
	return nil
}

func (s *memStore) Load(_ context.Context, id uuid.UUID) (model.Plan, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, planDb.ErrNotFound
	}
	return p, nil
}

func (s *memStore) FindByTrajectory(_ context.Context, trajectoryID int) ([]model.Plan, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	var list []model.Plan
	for _, p := range s.plans {
		if p.TrajectoryID == trajectoryID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (s *memStore) Trajectories(_ context.Context) ([]int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	seen := map[int]struct{}{}
	var ids []int
	for _, p := range s.plans {
		if _, ok := seen[p.TrajectoryID]; !ok {
			seen[p.TrajectoryID] = struct{}{}
			ids = append(ids, p.TrajectoryID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *memStore) DeleteMany(_ context.Context, plans []model.Plan) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, p := range plans {
		delete(s.plans, p.ID)
	}
	return nil
}

func (s *memStore) setFail(fail bool) {
	s.mtx.Lock()
	s.fail = fail
	s.mtx.Unlock()
}

func (s *memStore) len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.plans)
}

func newPlan(trajectoryID int, createdAt time.Time) model.Plan {
	return model.NewPlan(planner.Request{TrajectoryID: trajectoryID}, &planner.Result{Seed: 1}, nil, createdAt)
}
