package plan

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"RRT_PLAN_REQUEST_TIMEOUT" default:"30s"`
	MaxPlans       int           `envconfig:"RRT_PLAN_MAX_PLANS" default:"16"`
}
