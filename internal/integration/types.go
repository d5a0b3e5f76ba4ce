package integration

import (
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
)

type PlansRequest struct {
	Plans []planner.Request `json:"plans"`
}

type PlansResponse struct {
	Plans []model.Plan `json:"plans"`
}
