// Package dispatcher sits between the plan handlers and the plan store. It
// batches writes, serves reads from the pending batch and the store alike, and
// runs retention over stored plans in the background.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/google/uuid"
)

var ErrClosed = errors.New("dispatcher is shutting down")

type ProvideFn func(chan<- error) (*Manager, error)

// Abstractions for the store operations the manager depends on
type (
	savePlansFn         func(context.Context, []model.Plan) error
	deletePlansFn       func(context.Context, []model.Plan) error
	fetchByTrajectoryFn func(context.Context, int) ([]model.Plan, error)
	fetchKeysFn         func(context.Context) ([]int, error)
	loadPlanFn          func(context.Context, uuid.UUID) (model.Plan, error)
)

type pullDependencies struct {
	savePlans         savePlansFn
	deletePlans       deletePlansFn
	fetchByTrajectory fetchByTrajectoryFn
	fetchKeys         fetchKeysFn
	loadPlan          loadPlanFn
}

type Options struct {
	maxPlansStored int
	maxStorageTime time.Duration
	dbFlushTime    time.Duration
	dbFlushSize    int
	rebuildDBTime  time.Duration
}

type Option func(*Manager)

func WithDBFlushTime(t time.Duration) Option {
	return func(m *Manager) {
		m.opts.dbFlushTime = t
	}
}

func WithDBFlushSize(n int) Option {
	return func(m *Manager) {
		m.opts.dbFlushSize = n
	}
}

func WithRebuildDBTime(t time.Duration) Option {
	return func(m *Manager) {
		m.opts.rebuildDBTime = t
	}
}

func WithMaxPlansStored(n int) Option {
	return func(m *Manager) {
		m.opts.maxPlansStored = n
	}
}

func WithMaxStorageTime(t time.Duration) Option {
	return func(m *Manager) {
		m.opts.maxStorageTime = t
	}
}

func New(store planDb.Store, shutdownCh chan<- error, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("plan store instance is not created")
	}
	m := &Manager{
		shutdownCh: shutdownCh,
		done:       make(chan struct{}),
		opts: Options{
			dbFlushSize:   16,
			dbFlushTime:   time.Second,
			rebuildDBTime: 15 * time.Second,
		},
		deps: pullDependencies{
			savePlans:         store.SaveMany,
			deletePlans:       store.DeleteMany,
			fetchByTrajectory: store.FindByTrajectory,
			fetchKeys:         store.Trajectories,
			loadPlan:          store.Load,
		},
	}
	for _, f := range opts {
		f(m)
	}
	if m.opts.dbFlushSize <= 0 || m.opts.dbFlushTime <= 0 {
		return nil, fmt.Errorf("flush size and flush time must be positive")
	}

	m.dbTxExecutor = newDBTxExecutor(dbTxExecutorOptions{
		flushSize: m.opts.dbFlushSize,
		flushTime: m.opts.dbFlushTime,
	})
	m.dbScheduler = newDBScheduler(dbSchedulerConfig{
		maxPlansStored: m.opts.maxPlansStored,
		maxStorageTime: m.opts.maxStorageTime,
		rebuildDBTime:  m.opts.rebuildDBTime,
		deps:           m.deps,
	})
	return m, nil
}

// Manager is the write-behind front of a plan store.
type Manager struct {
	mtx sync.RWMutex

	opts         Options
	deps         pullDependencies
	dbTxExecutor *dbTxExecutor
	dbScheduler  *dbScheduler
	shutdownCh   chan<- error

	closed bool
	done   chan struct{}
	cancel func()
}

// Run starts the flusher and, when retention is configured, the scheduler,
// and returns at once. Once ctx is done the manager refuses new plans, waits
// for saves already running and reports the final flush on the shutdown
// channel.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go func() {
		m.dbTxExecutor.flusher(ctx, m.deps.savePlans)
		// Saves in progress finish before the last flush.
		m.mtx.Lock()
		m.closed = true
		m.mtx.Unlock()
		close(m.done)
		m.shutdownCh <- m.dbTxExecutor.drain(m.deps.savePlans)
	}()
	if m.opts.rebuildDBTime > 0 && (m.opts.maxPlansStored > 0 || m.opts.maxStorageTime > 0) {
		go m.dbScheduler.schedule(ctx)
	}
	return nil
}

// Closed is closed once the manager stops accepting plans.
func (m *Manager) Closed() <-chan struct{} {
	return m.done
}

func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Save queues plans for the store.
func (m *Manager) Save(ctx context.Context, plans ...model.Plan) error {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.closed {
		return ErrClosed
	}
	m.dbTxExecutor.write(ctx, m.deps.savePlans, plans...)
	return nil
}

// Load finds a plan among the pending ones first, then in the store.
func (m *Manager) Load(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	pending := m.dbTxExecutor.pending(func(p model.Plan) bool { return p.ID == id })
	if len(pending) > 0 {
		return pending[0], nil
	}
	return m.deps.loadPlan(ctx, id)
}

// FindByTrajectory returns stored and pending plans of a trajectory, oldest
// first.
func (m *Manager) FindByTrajectory(ctx context.Context, trajectoryID int) ([]model.Plan, error) {
	pending := m.dbTxExecutor.pending(func(p model.Plan) bool { return p.TrajectoryID == trajectoryID })
	stored, err := m.deps.fetchByTrajectory(ctx, trajectoryID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(stored))
	list := make([]model.Plan, 0, len(stored)+len(pending))
	for _, p := range stored {
		seen[p.ID] = struct{}{}
		list = append(list, p)
	}
	for _, p := range pending {
		if _, ok := seen[p.ID]; !ok {
			list = append(list, p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
