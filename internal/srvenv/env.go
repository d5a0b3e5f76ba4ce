package srvenv

import (
	"context"
	"fmt"

	"github.com/go-sod/rrt/internal/database"
	"github.com/go-sod/rrt/internal/dispatcher"
	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/planner"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// SrvEnv holds the components built from the environment.
type SrvEnv struct {
	database   *database.DB
	store      planDb.Store
	planner    *planner.Planner
	dispatcher dispatcher.ProvideFn
	closers    []func() error
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Store() planDb.Store {
	return s.store
}

func (s *SrvEnv) Planner() *planner.Planner {
	return s.planner
}

func (s *SrvEnv) ProvideDispatcher() dispatcher.ProvideFn {
	return s.dispatcher
}

// Close releases the database and any other connection the env opened.
func (s *SrvEnv) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.database != nil {
		if err := s.database.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("close env: %w", firstErr)
	}
	return nil
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithStore(store planDb.Store) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.store = store
		return s
	}
}

func WithPlanner(p *planner.Planner) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.planner = p
		return s
	}
}

func WithDispatcher(fn dispatcher.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.dispatcher = fn
		return s
	}
}

func WithCloser(fn func() error) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.closers = append(s.closers, fn)
		return s
	}
}
