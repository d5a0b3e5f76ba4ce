package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-sod/rrt/internal/logging"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr           string        `envconfig:"RRT_SRV_ADDR" default:":8787"`
	MaxConnections int           `envconfig:"RRT_SRV_MAX_CONNECTIONS" default:"1024"`
	ReadTimeout    time.Duration `envconfig:"RRT_SRV_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"RRT_SRV_WRITE_TIMEOUT" default:"60s"`
	// GRPCAddr serves the gRPC health service, empty turns it off.
	GRPCAddr string `envconfig:"RRT_GRPC_ADDR" default:":8788"`
}

type Server struct {
	cfg      Config
	listener net.Listener
}

// New listens on cfg.Addr. A positive MaxConnections caps the number of
// connections served at once.
func New(cfg Config) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on %s: %w", cfg.Addr, err)
	}
	if cfg.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}

	return &Server{
		cfg:      cfg,
		listener: listener,
	}, nil
}

// Addr is the address actually bound, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx)
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()

		logger.Debugf("server.Serve: context closed")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()

		logger.Debugf("server.Serve: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	logger.Infof("server.Serve: listening on %s", s.Addr())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	logger.Debugf("server.Serve: serving stopped")

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to shutdown: %w", err)
	default:
		return nil
	}
}

func (s *Server) ServeHTTPHandler(ctx context.Context, handler http.Handler) error {
	return s.ServeHTTP(ctx, &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	})
}

func (s *Server) ServeGRPC(ctx context.Context, srv *grpc.Server) error {
	logger := logging.FromContext(ctx)
	go func() {
		<-ctx.Done()
		logger.Debugf("server.ServeGRPC: context closed")
		srv.GracefulStop()
	}()

	logger.Infof("server.ServeGRPC: listening on %s", s.Addr())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve grpc: %w", err)
	}

	logger.Debugf("server.ServeGRPC: serving stopped")
	return nil
}

// NewGRPCHealth returns a gRPC server carrying the standard health service.
// The named services start SERVING; Shutdown on the health server turns every
// service NOT_SERVING.
func NewGRPCHealth(services ...string) (*grpc.Server, *health.Server) {
	hs := health.NewServer()
	for _, name := range services {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// HandleHealth answers 200 while ctx is alive and 503 once shutdown began.
func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		if ctx.Err() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, `{"status": "shutting down"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{"status": "ok"}`)
	})
}
