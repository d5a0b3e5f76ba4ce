package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedulerFor(store *memStore, maxPlans int, maxAge time.Duration, now time.Time) *dbScheduler {
	s := newDBScheduler(dbSchedulerConfig{
		maxPlansStored: maxPlans,
		maxStorageTime: maxAge,
		deps: pullDependencies{
			deletePlans:       store.DeleteMany,
			fetchByTrajectory: store.FindByTrajectory,
			fetchKeys:         store.Trajectories,
		},
	})
	s.now = func() time.Time { return now }
	return s
}

func TestProcessOverSize(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name        string
		maxPlans    int
		plans       int
		expectedLen int
	}{
		{name: "trims_oldest", maxPlans: 3, plans: 5, expectedLen: 3},
		{name: "under_limit", maxPlans: 3, plans: 2, expectedLen: 2},
		{name: "at_limit", maxPlans: 3, plans: 3, expectedLen: 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var plans []model.Plan
			for i := 0; i < test.plans; i++ {
				plans = append(plans, newPlan(7, now.Add(time.Duration(i)*time.Minute)))
			}
			store := newMemStore(plans...)
			scheduler := schedulerFor(store, test.maxPlans, 0, now)

			require.NoError(t, scheduler.processOverSize(context.Background(), 7))
			left, err := store.FindByTrajectory(context.Background(), 7)
			require.NoError(t, err)
			assert.Len(t, left, test.expectedLen)
			for _, p := range plans[test.plans-test.expectedLen:] {
				_, err := store.Load(context.Background(), p.ID)
				assert.NoError(t, err, "newest plans survive")
			}
		})
	}
}

func TestProcessOutdated(t *testing.T) {
	now := time.Now()
	old, fresh := newPlan(1, now.Add(-2*time.Hour)), newPlan(1, now.Add(-time.Minute))
	store := newMemStore(old, fresh, newPlan(2, now.Add(-3*time.Hour)))
	scheduler := schedulerFor(store, 0, time.Hour, now)

	require.NoError(t, scheduler.rebuild(context.Background()))
	assert.Equal(t, 1, store.len())
	_, err := store.Load(context.Background(), fresh.ID)
	assert.NoError(t, err)
}
