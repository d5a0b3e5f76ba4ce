package setup_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	rrt "github.com/go-sod/rrt/internal/config"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/internal/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Bolt(t *testing.T) {
	t.Setenv("RRT_DB_FILE", filepath.Join(t.TempDir(), "rrt.db"))
	t.Setenv("RRT_PLAN_STORE", "bolt")
	t.Setenv("RRT_STEP_SIZE", "0.25")
	t.Setenv("RRT_DB_FLUSH_TIME", "50ms")

	ctx := context.Background()
	config := rrt.Config{}
	env, err := setup.Setup(ctx, &config)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, env.Close(ctx))
	}()

	assert.Equal(t, 0.25, config.Planner.StepSize)
	assert.Equal(t, ":8787", config.Server.Addr)
	assert.Equal(t, 50*time.Millisecond, config.Dispatcher.DBFlushTime)
	require.NotNil(t, env.Database())
	require.NotNil(t, env.Store())
	require.NotNil(t, env.Planner())
	require.NotNil(t, env.ProvideDispatcher())

	m, err := env.ProvideDispatcher()(make(chan error, 1))
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSetup_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown_store", env: map[string]string{"RRT_PLAN_STORE": "mongo"}},
		{name: "unknown_metric", env: map[string]string{"RRT_PLAN_STORE": "bolt", "RRT_METRIC": "cosine"}},
		{name: "bad_duration", env: map[string]string{"RRT_DB_FLUSH_TIME": "soon"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("RRT_DB_FILE", filepath.Join(t.TempDir(), "rrt.db"))
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			_, err := setup.Setup(context.Background(), &rrt.Config{})
			assert.Error(t, err)
		})
	}
}

func TestProvidePlannerFor(t *testing.T) {
	_, err := setup.ProvidePlannerFor(&planner.Config{StepSize: 1, GoalRadius: 1, MaxIterations: 10, Metric: "manhattan"})
	assert.NoError(t, err)

	_, err = setup.ProvidePlannerFor(&planner.Config{StepSize: 0, GoalRadius: 1, MaxIterations: 10})
	assert.Error(t, err)
}
