// Package integration drives a running rrt-srv over HTTP.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/go-sod/rrt/internal/planner"
	"github.com/google/uuid"
)

type prefixRoundTripper struct {
	addr string
	rt   http.RoundTripper
}

func (p *prefixRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	u := r.URL
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		u.Host = p.addr
	}

	return p.rt.RoundTrip(r)
}

func NewClient(addr string) *Client {
	return &Client{client: &http.Client{Transport: &prefixRoundTripper{addr: addr, rt: http.DefaultTransport}}}
}

type Client struct {
	client *http.Client
}

// Plan posts a single request and returns the plan with the response status.
func (c *Client) Plan(ctx context.Context, r planner.Request) (model.Plan, int, error) {
	var p model.Plan
	code, err := c.post(ctx, r, &p)
	return p, code, err
}

// PlanBatch posts requests as one batch.
func (c *Client) PlanBatch(ctx context.Context, rs ...planner.Request) ([]model.Plan, int, error) {
	var resp PlansResponse
	code, err := c.post(ctx, PlansRequest{Plans: rs}, &resp)
	return resp.Plans, code, err
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (model.Plan, int, error) {
	var p model.Plan
	code, err := c.get(ctx, url.Values{"id": {id.String()}}, &p)
	return p, code, err
}

func (c *Client) ByTrajectory(ctx context.Context, trajectoryID int) ([]model.Plan, int, error) {
	var resp PlansResponse
	code, err := c.get(ctx, url.Values{"trajectory": {strconv.Itoa(trajectoryID)}}, &resp)
	return resp.Plans, code, err
}

func (c *Client) Health(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return 0, fmt.Errorf("create new request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context, in, out interface{}) (int, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("unable marshal plan request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/plan", bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, query url.Values, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/plan?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create new request: %w", err)
	}
	return c.do(req, out)
}

// do decodes the body into out when the server answered with a plan.
func (c *Client) do(req *http.Request, out interface{}) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error with sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
