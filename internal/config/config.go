package rrt

import (
	"github.com/go-sod/rrt/internal/database"
	"github.com/go-sod/rrt/internal/dispatcher"
	"github.com/go-sod/rrt/internal/plan"
	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/internal/server"
	"github.com/go-sod/rrt/internal/setup"
)

var (
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.StoreConfigProvider      = (*Config)(nil)
	_ setup.PlannerConfigProvider    = (*Config)(nil)
	_ setup.DispatcherConfigProvider = (*Config)(nil)
)

// Config is the environment of rrt-srv.
type Config struct {
	Server     server.Config
	MetricsOn  bool   `envconfig:"RRT_METRICS" default:"true"`
	PprofAddr  string `envconfig:"RRT_PPROF_ADDR"`
	Planner    planner.Config
	Plan       plan.Config
	Database   database.Config
	Store      planDb.Config
	Dispatcher dispatcher.Config
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) StoreConfig() *planDb.Config {
	return &c.Store
}

func (c *Config) PlannerConfig() *planner.Config {
	return &c.Planner
}

func (c *Config) DispatcherConfig() *dispatcher.Config {
	return &c.Dispatcher
}
