// Package plan serves planning requests over HTTP and keeps their outcomes.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-sod/rrt/internal/geom"
	"github.com/go-sod/rrt/internal/httputil"
	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/internal/metric"
	planDb "github.com/go-sod/rrt/internal/plan/database"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 8 * 1024 * 1024

// Planner solves a single request.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Result, error)
}

// Repository keeps plans after they are answered.
type Repository interface {
	Save(ctx context.Context, plans ...model.Plan) error
	Load(ctx context.Context, id uuid.UUID) (model.Plan, error)
	FindByTrajectory(ctx context.Context, trajectoryID int) ([]model.Plan, error)
}

// request is either one planning request or a batch under "plans", never
// both.
type request struct {
	planner.Request
	Plans []planner.Request `json:"plans"`
}

type batchResponse struct {
	Plans []model.Plan `json:"plans"`
}

func NewHandler(cfg *Config, p Planner, repo Repository) (http.Handler, error) {
	if p == nil || repo == nil {
		return nil, fmt.Errorf("planner and repository are required")
	}
	return &handler{cfg: cfg, planner: p, repo: repo, now: time.Now}, nil
}

type handler struct {
	cfg     *Config
	planner Planner
	repo    Repository
	now     func() time.Time
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodPost:
		h.create(ctx, w, r)
	case http.MethodGet:
		h.find(ctx, w, r)
	default:
		httputil.RespError(ctx, w, http.StatusMethodNotAllowed, fmt.Sprintf("method %v is not allowed", r.Method))
	}
}

func (h *handler) create(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if !httputil.IsJSON(r) {
		httputil.RespError(ctx, w, http.StatusUnsupportedMediaType, "content-type is not application/json")
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	var req request
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Plans) == 0 {
		p, err := h.plan(ctx, req.Request)
		if err != nil {
			h.respPlanErr(ctx, w, err)
			return
		}
		if err := h.repo.Save(ctx, p); err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to store plan, %v"}`, err)
			return
		}
		status := http.StatusOK
		if !p.IsSolved() {
			status = http.StatusUnprocessableEntity
		}
		httputil.RespJSON(ctx, w, status, p)
		return
	}

	if !reflect.ValueOf(req.Request).IsZero() {
		httputil.RespError(ctx, w, http.StatusBadRequest, "a body carries either one request or plans, not both")
		return
	}
	if len(req.Plans) > h.cfg.MaxPlans {
		httputil.RespError(ctx, w, http.StatusBadRequest, fmt.Sprintf("too many plans, max allowed len is %d", h.cfg.MaxPlans))
		return
	}
	plans := make([]model.Plan, len(req.Plans))
	errGrp, grpCtx := errgroup.WithContext(ctx)
	for i := range req.Plans {
		i := i
		errGrp.Go(func() error {
			p, err := h.plan(grpCtx, req.Plans[i])
			if err != nil {
				return fmt.Errorf("plan %d: %w", i, err)
			}
			plans[i] = p
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		h.respPlanErr(ctx, w, err)
		return
	}
	if err := h.repo.Save(ctx, plans...); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable to store plans, %v"}`, err)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusOK, batchResponse{Plans: plans})
}

// plan runs one request. A request that cannot be solved becomes a failed
// plan; any other planner error is returned.
func (h *handler) plan(ctx context.Context, req planner.Request) (model.Plan, error) {
	logger := logging.FromContext(ctx)
	started := h.now()
	res, err := h.planner.Plan(ctx, req)
	if err != nil && !errors.Is(err, planner.ErrNoPath) {
		return model.Plan{}, err
	}
	// the seed actually used makes the plan reproducible, failed or not
	if seed := planner.SeedUsed(res, err); seed != 0 {
		req.Seed = seed
	}
	p := model.NewPlan(req, res, err, h.now())
	metric.RecordPlan(ctx, p, h.now().Sub(started))
	logger.Debugf("plan %s for trajectory %d: %s", p.ID, p.TrajectoryID, p.Status)
	return p, nil
}

func (h *handler) respPlanErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, geom.ErrNonFinite), errors.Is(err, geom.ErrUnknownMetric):
		httputil.RespError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		httputil.RespError(ctx, w, http.StatusServiceUnavailable, "planning timed out")
	default:
		httputil.RespInternalError(ctx, w, `{"error": "planning error, %v"}`, err)
	}
}

// find answers GET /plan?id=<uuid> and GET /plan?trajectory=<id>.
func (h *handler) find(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	switch {
	case query.Get("id") != "":
		id, err := uuid.Parse(query.Get("id"))
		if err != nil {
			httputil.RespError(ctx, w, http.StatusBadRequest, fmt.Sprintf("invalid plan id %q", query.Get("id")))
			return
		}
		p, err := h.repo.Load(ctx, id)
		if errors.Is(err, planDb.ErrNotFound) {
			httputil.RespError(ctx, w, http.StatusNotFound, fmt.Sprintf("plan %s not found", id))
			return
		}
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to load plan, %v"}`, err)
			return
		}
		httputil.RespJSON(ctx, w, http.StatusOK, p)
	case query.Get("trajectory") != "":
		trajectoryID, err := strconv.Atoi(query.Get("trajectory"))
		if err != nil {
			httputil.RespError(ctx, w, http.StatusBadRequest, fmt.Sprintf("invalid trajectory %q", query.Get("trajectory")))
			return
		}
		plans, err := h.repo.FindByTrajectory(ctx, trajectoryID)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable to list plans, %v"}`, err)
			return
		}
		if plans == nil {
			plans = []model.Plan{}
		}
		httputil.RespJSON(ctx, w, http.StatusOK, batchResponse{Plans: plans})
	default:
		httputil.RespError(ctx, w, http.StatusBadRequest, "id or trajectory query parameter is required")
	}
}
