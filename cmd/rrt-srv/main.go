package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-sod/rrt/internal/buildinfo"
	rrt "github.com/go-sod/rrt/internal/config"
	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/internal/metric"
	"github.com/go-sod/rrt/internal/plan"
	"github.com/go-sod/rrt/internal/server"
	"github.com/go-sod/rrt/internal/setup"
	"github.com/go-sod/rrt/internal/shutdown"
	"golang.org/x/sync/errgroup"
)

// planHealthService is the name reported by the gRPC health service.
const planHealthService = "rrt.plan"

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintln(os.Stdout, buildinfo.Info.String())

	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	config := rrt.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if err := env.Close(context.Background()); err != nil {
			logger.Errorf("env.Close: %v", err)
		}
	}()

	grp, ctx := errgroup.WithContext(ctx)

	shutdownCh := make(chan error, 1)
	dispatcher, err := env.ProvideDispatcher()(shutdownCh)
	if err != nil {
		return fmt.Errorf("dispatcher provider function error: %w", err)
	}
	if err := dispatcher.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher.Run: %w", err)
	}

	srv, err := server.New(config.Server)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()
	planHandler, err := plan.NewHandler(&config.Plan, env.Planner(), dispatcher)
	if err != nil {
		return fmt.Errorf("plan.NewHandler: %w", err)
	}
	mux.Handle("/plan", planHandler)
	mux.Handle("/health", server.HandleHealth(ctx))

	if config.MetricsOn {
		if err := metric.Register(); err != nil {
			return fmt.Errorf("metric.Register: %w", err)
		}
		metricsHandler, err := metric.NewHandler()
		if err != nil {
			return fmt.Errorf("metric.NewHandler: %w", err)
		}
		mux.Handle("/metrics", metricsHandler)
	}

	if config.Server.GRPCAddr != "" {
		grpcListener, err := server.New(server.Config{
			Addr:           config.Server.GRPCAddr,
			MaxConnections: config.Server.MaxConnections,
		})
		if err != nil {
			return fmt.Errorf("server.New grpc: %w", err)
		}
		grpcSrv, healthSrv := server.NewGRPCHealth(planHealthService)
		go func() {
			<-dispatcher.Closed()
			healthSrv.Shutdown()
		}()
		grp.Go(func() error {
			return grpcListener.ServeGRPC(ctx, grpcSrv)
		})
	}

	if config.PprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(config.PprofAddr, nil); err != nil {
				logger.Errorf("pprof: %v", err)
			}
		}()
	}

	grp.Go(func() error {
		return srv.ServeHTTPHandler(ctx, mux)
	})
	grp.Go(func() error {
		<-ctx.Done()
		// the dispatcher reports its last flush once ctx is done
		return <-shutdownCh
	})

	return grp.Wait()
}
