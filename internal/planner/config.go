package planner

type Config struct {
	StepSize      float64 `envconfig:"RRT_STEP_SIZE" default:"1"`
	GoalRadius    float64 `envconfig:"RRT_GOAL_RADIUS" default:"1"`
	RewireRadius  float64 `envconfig:"RRT_REWIRE_RADIUS" default:"3"`
	MaxIterations int     `envconfig:"RRT_MAX_ITERATIONS" default:"20000"`
	GoalBias      float64 `envconfig:"RRT_GOAL_BIAS" default:"0.05"`
	Metric        string  `envconfig:"RRT_METRIC" default:"euclidean"`
}
