// Package horde is a typed client for the AI Horde v2 REST API.
package horde

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"resty.dev/v3"
)

// ErrMalformedResponse marks a response body that could not be decoded.
var ErrMalformedResponse = errors.New("malformed horde response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: horde returned %d: %s", e.Op, e.Code, e.Body)
}

// Temporary reports whether the failure is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Config configures the Client.
type Config struct {
	BaseURL     string
	ClientAgent string
	Timeout     time.Duration
}

// Client talks to the remote network.
type Client struct {
	rc *resty.Client
}

const maxErrorBody = 512

// New constructs a Client.
func New(cfg Config) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.ClientAgent != "" {
		rc.SetHeader("Client-Agent", cfg.ClientAgent)
	}
	return &Client{rc: rc}
}

// Close releases idle connections.
func (c *Client) Close() error {
	if err := c.rc.Close(); err != nil {
		return fmt.Errorf("close horde client: %w", err)
	}
	return nil
}

// Submit queues a generation, authenticating with apiKey.
func (c *Client) Submit(ctx context.Context, apiKey string, req GenerationRequest) (AsyncResponse, error) {
	var out AsyncResponse
	r := c.rc.R().
		SetContext(ctx).
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req)
	if err := c.do(r, http.MethodPost, "/v2/generate/async", "submit", &out); err != nil {
		return AsyncResponse{}, err
	}
	if out.ID == "" {
		return AsyncResponse{}, fmt.Errorf("submit: missing job id: %w", ErrMalformedResponse)
	}
	return out, nil
}

// Check fetches the lightweight status of a job.
func (c *Client) Check(ctx context.Context, jobID string) (CheckResponse, error) {
	var out CheckResponse
	path := "/v2/generate/check/" + url.PathEscape(jobID)
	if err := c.do(c.rc.R().SetContext(ctx), http.MethodGet, path, "check", &out); err != nil {
		return CheckResponse{}, err
	}
	return out, nil
}

// Status fetches the full status of a job, including generations.
func (c *Client) Status(ctx context.Context, jobID string) (StatusResponse, error) {
	var out StatusResponse
	path := "/v2/generate/status/" + url.PathEscape(jobID)
	if err := c.do(c.rc.R().SetContext(ctx), http.MethodGet, path, "status", &out); err != nil {
		return StatusResponse{}, err
	}
	return out, nil
}

// Cancel asks the network to stop a job.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	path := "/v2/generate/status/" + url.PathEscape(jobID)
	return c.do(c.rc.R().SetContext(ctx), http.MethodDelete, path, "cancel", nil)
}

// Models lists image models currently served by the network.
func (c *Client) Models(ctx context.Context) ([]ModelStatus, error) {
	var out []ModelStatus
	r := c.rc.R().SetContext(ctx).SetQueryParam("type", "image")
	if err := c.do(r, http.MethodGet, "/v2/status/models", "models", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do executes r and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(r *resty.Request, method, path, op string, out any) error {
	resp, err := r.SetDoNotParseResponse(true).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil || resp.RawResponse == nil {
		return fmt.Errorf("%s: empty response: %w", op, ErrMalformedResponse)
	}
	body := resp.RawResponse.Body
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if code := resp.RawResponse.StatusCode; code < 200 || code > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return &StatusError{Op: op, Code: code, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}
