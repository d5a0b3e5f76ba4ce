// Package setup reads the environment into a config and builds the
// components the config asks for.
package setup

import (
	"context"
	"fmt"

	"github.com/go-sod/rrt/internal/database"
	"github.com/go-sod/rrt/internal/dispatcher"
	"github.com/go-sod/rrt/internal/geom"
	"github.com/go-sod/rrt/internal/logging"
	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/internal/srvenv"
	"github.com/kelseyhightower/envconfig"
)

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type StoreConfigProvider interface {
	StoreConfig() *planDb.Config
}

type PlannerConfigProvider interface {
	PlannerConfig() *planner.Config
}

type DispatcherConfigProvider interface {
	DispatcherConfig() *dispatcher.Config
}

func Setup(ctx context.Context, config interface{}) (_ *srvenv.SrvEnv, err error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	defer func() {
		// release whatever was opened before the failure
		if err != nil {
			_ = srvenv.New(serverEnvOpts...).Close(ctx)
		}
	}()
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var store planDb.Store
	if storeConfigProvider, ok := config.(StoreConfigProvider); ok {
		cfg := storeConfigProvider.StoreConfig()
		logger.Infof("Configuring %s plan store", cfg.Store)
		switch cfg.Store {
		case planDb.StoreBolt:
			dbConfigProvider, ok := config.(DatabaseConfigProvider)
			if !ok {
				return nil, fmt.Errorf("bolt store requires a database config")
			}
			db, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
			if err != nil {
				return nil, fmt.Errorf("unable to connect to database: %w", err)
			}
			serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
			store = planDb.NewBoltStore(db)
		case planDb.StoreRedis:
			redisStore := planDb.NewRedisStore(cfg)
			if err := redisStore.Ping(ctx); err != nil {
				_ = redisStore.Close()
				return nil, fmt.Errorf("unable to connect to redis: %w", err)
			}
			serverEnvOpts = append(serverEnvOpts, srvenv.WithCloser(redisStore.Close))
			store = redisStore
		default:
			return nil, fmt.Errorf("unknown plan store type: %s", cfg.Store)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithStore(store))
	}

	if plannerConfigProvider, ok := config.(PlannerConfigProvider); ok {
		logger.Info("Configuring planner")
		p, err := ProvidePlannerFor(plannerConfigProvider.PlannerConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create planner: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithPlanner(p))
	}

	if dispatcherConfigProvider, ok := config.(DispatcherConfigProvider); ok && store != nil {
		logger.Info("Configuring dispatcher")
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDispatcher(
			ProvideDispatcherFor(dispatcherConfigProvider.DispatcherConfig(), store),
		))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvidePlannerFor(cfg *planner.Config) (*planner.Planner, error) {
	distFunc, err := geom.DistanceFuncFor(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("unable provide distance function: %w", err)
	}
	return planner.New(
		planner.WithStepSize(cfg.StepSize),
		planner.WithGoalRadius(cfg.GoalRadius),
		planner.WithRewireRadius(cfg.RewireRadius),
		planner.WithMaxIterations(cfg.MaxIterations),
		planner.WithGoalBias(cfg.GoalBias),
		planner.WithDistance(distFunc),
	)
}

func ProvideDispatcherFor(cfg *dispatcher.Config, store planDb.Store) dispatcher.ProvideFn {
	return func(shutdownCh chan<- error) (*dispatcher.Manager, error) {
		return dispatcher.New(
			store,
			shutdownCh,
			dispatcher.WithDBFlushSize(cfg.DBFlushSize),
			dispatcher.WithDBFlushTime(cfg.DBFlushTime),
			dispatcher.WithRebuildDBTime(cfg.RebuildDBTime),
			dispatcher.WithMaxPlansStored(cfg.MaxPlansStored),
			dispatcher.WithMaxStorageTime(cfg.MaxStorageTime),
		)
	}
}
