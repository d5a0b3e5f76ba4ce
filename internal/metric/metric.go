// Package metric records planning statistics with OpenCensus and exposes them
// in the Prometheus text format.
package metric

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/go-sod/rrt/internal/plan/model"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const namespace = "rrt"

var (
	PlansCount  = stats.Int64("rrt/plans", "Number of planning requests", stats.UnitDimensionless)
	PlanLatency = stats.Float64("rrt/plan_latency", "Time spent planning", stats.UnitMilliseconds)
	TreeNodes   = stats.Int64("rrt/tree_nodes", "Nodes in the search tree of a solved plan", stats.UnitDimensionless)
	Iterations  = stats.Int64("rrt/iterations", "Iterations spent on a solved plan", stats.UnitDimensionless)

	KeyStatus = tag.MustNewKey("status")
)

var Views = []*view.View{
	{
		Name:        "plans_total",
		Description: "Number of planning requests by outcome",
		Measure:     PlansCount,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{KeyStatus},
	},
	{
		Name:        "plan_latency_ms",
		Description: "Planning latency by outcome",
		Measure:     PlanLatency,
		Aggregation: view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
		TagKeys:     []tag.Key{KeyStatus},
	},
	{
		Name:        "tree_nodes",
		Description: "Search tree size of solved plans",
		Measure:     TreeNodes,
		Aggregation: view.Distribution(10, 100, 1000, 5000, 10000, 50000, 100000),
	},
	{
		Name:        "iterations",
		Description: "Iterations of solved plans",
		Measure:     Iterations,
		Aggregation: view.Distribution(10, 100, 1000, 5000, 10000, 50000, 100000),
	},
}

// Register enables the views. It is safe to call more than once.
func Register() error {
	if err := view.Register(Views...); err != nil {
		return fmt.Errorf("register views: %w", err)
	}
	return nil
}

// NewHandler returns the Prometheus scrape endpoint for the registered views.
func NewHandler() (http.Handler, error) {
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	return exporter, nil
}

// RecordPlan records the outcome of one planning request.
func RecordPlan(ctx context.Context, p model.Plan, elapsed time.Duration) {
	ms := float64(elapsed) / float64(time.Millisecond)
	measurements := []stats.Measurement{PlansCount.M(1), PlanLatency.M(ms)}
	if p.Result != nil {
		measurements = append(measurements, TreeNodes.M(int64(p.Result.Nodes)), Iterations.M(int64(p.Result.Iterations)))
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyStatus, p.Status.String())}, measurements...)
}
