package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-sod/rrt/internal/httputil"
	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/go-sod/rrt/internal/setup"
	"github.com/go-sod/rrt/internal/shutdown"
	"github.com/go-sod/rrt/pkg/rworker"
	"github.com/kelseyhightower/envconfig"
)

var (
	remote      = flag.String("remote", "", "rrt-srv base url, plans locally when empty")
	token       = flag.String("token", "", "bearer token for the remote server")
	user        = flag.String("user", "", "basic auth user for the remote server")
	password    = flag.String("password", "", "basic auth password for the remote server")
	timeout     = flag.Duration("timeout", time.Minute, "time limit for each scenario")
	concurrency = flag.Int("concurrency", 4, "scenarios planned at once")
	seed        = flag.Uint("seed", 0, "override the seed of every scenario")
	tree        = flag.Bool("tree", false, "include the search tree in the output")
)

// outcome is one line of the JSON report.
type outcome struct {
	Scenario string      `json:"scenario"`
	Plan     *model.Plan `json:"plan,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type planFn func(ctx context.Context, req planner.Request) (model.Plan, error)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <scenario.toml>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)

	fn, err := plannerFromFlags()
	if err != nil {
		logger.Fatal(err)
	}

	outcomes := run(ctx, fn, flag.Args())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		logger.Fatal(err)
	}
	for _, o := range outcomes {
		if o.Plan == nil || !o.Plan.IsSolved() {
			os.Exit(1)
		}
	}
}

func plannerFromFlags() (planFn, error) {
	if *remote != "" {
		cfg := httputil.HTTPClientConfig{BearerToken: *token, Timeout: *timeout}
		if *user != "" {
			cfg.BasicAuth = &httputil.BasicAuth{Username: *user, Password: *password}
		}
		client, err := httputil.NewClientFromConfig(cfg, false)
		if err != nil {
			return nil, err
		}
		return remotePlanner(client, strings.TrimSuffix(*remote, "/")+"/plan"), nil
	}

	cfg := planner.Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	p, err := setup.ProvidePlannerFor(&cfg)
	if err != nil {
		return nil, err
	}
	return localPlanner(p), nil
}

func localPlanner(p *planner.Planner) planFn {
	return func(ctx context.Context, req planner.Request) (model.Plan, error) {
		res, err := p.Plan(ctx, req)
		if err != nil && !errors.Is(err, planner.ErrNoPath) {
			return model.Plan{}, err
		}
		if seed := planner.SeedUsed(res, err); seed != 0 {
			req.Seed = seed
		}
		return model.NewPlan(req, res, err, time.Now()), nil
	}
}

func remotePlanner(client *http.Client, url string) planFn {
	return func(ctx context.Context, req planner.Request) (model.Plan, error) {
		var p model.Plan
		if err := httputil.PostJSON(ctx, client, url, req, &p, http.StatusUnprocessableEntity); err != nil {
			return model.Plan{}, err
		}
		return p, nil
	}
}

// run plans every scenario file and reports the outcomes in argument order.
func run(ctx context.Context, fn planFn, paths []string) []outcome {
	logger := logging.FromContext(ctx)
	outcomes := make([]outcome, len(paths))
	pool := rworker.New(*concurrency)
	for i, path := range paths {
		i, path := i, path
		outcomes[i].Scenario = path
		pool.Go(func() error {
			req, err := planner.LoadScenario(path)
			if err != nil {
				outcomes[i].Error = err.Error()
				return err
			}
			if *seed != 0 {
				req.Seed = uint32(*seed)
			}
			req.IncludeTree = req.IncludeTree || *tree

			sctx, cancel := context.WithTimeout(ctx, *timeout)
			defer cancel()
			p, err := fn(sctx, *req)
			if err != nil {
				outcomes[i].Error = err.Error()
				return fmt.Errorf("%s: %w", path, err)
			}
			outcomes[i].Plan = &p
			logger.Infof("%s: %s", path, p.Status)
			return nil
		})
	}
	for _, err := range pool.Wait() {
		logger.Errorf("scenario failed: %v", err)
	}
	return outcomes
}
