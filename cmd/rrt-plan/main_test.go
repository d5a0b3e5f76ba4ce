package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-sod/rrt/internal/httputil"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/pkg/container/kdtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Local(t *testing.T) {
	p, err := planner.New()
	require.NoError(t, err)

	outcomes := run(context.Background(), localPlanner(p), []string{
		"testdata/wall.toml",
		"testdata/short.toml",
		"testdata/unknown_key.toml",
		"testdata/missing.toml",
	})
	require.Len(t, outcomes, 4)

	wall := outcomes[0]
	assert.Equal(t, "testdata/wall.toml", wall.Scenario)
	require.NotNil(t, wall.Plan, wall.Error)
	assert.True(t, wall.Plan.IsSolved())
	assert.Equal(t, 3, wall.Plan.TrajectoryID)
	assert.Equal(t, uint32(7), wall.Plan.Request.Seed)

	short := outcomes[1]
	require.NotNil(t, short.Plan, short.Error)
	assert.Equal(t, model.StatusFailed, short.Plan.Status)
	assert.Contains(t, short.Plan.Error, planner.ErrNoPath.Error())

	assert.Nil(t, outcomes[2].Plan)
	assert.Contains(t, outcomes[2].Error, "unknown keys")
	assert.Nil(t, outcomes[3].Plan)
	assert.NotEmpty(t, outcomes[3].Error)
}

func TestRun_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plan", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req planner.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.MaxIterations < 10 {
			httputil.RespJSON(r.Context(), w, http.StatusUnprocessableEntity, model.NewPlan(req, nil, planner.ErrNoPath, time.Now()))
			return
		}
		res := &planner.Result{Path: []kdtree.Point{req.Start, req.Goal}, Cost: 9, Seed: req.Seed}
		httputil.RespJSON(r.Context(), w, http.StatusOK, model.NewPlan(req, res, nil, time.Now()))
	}))
	defer srv.Close()

	client, err := httputil.NewClientFromConfig(httputil.HTTPClientConfig{BearerToken: "secret"}, false)
	require.NoError(t, err)
	outcomes := run(context.Background(), remotePlanner(client, srv.URL+"/plan"), []string{
		"testdata/wall.toml",
		"testdata/short.toml",
	})
	require.Len(t, outcomes, 2)
	require.NotNil(t, outcomes[0].Plan, outcomes[0].Error)
	assert.True(t, outcomes[0].Plan.IsSolved())
	assert.Equal(t, 3, outcomes[0].Plan.TrajectoryID)
	require.NotNil(t, outcomes[1].Plan, outcomes[1].Error)
	assert.Equal(t, model.StatusFailed, outcomes[1].Plan.Status)
}
