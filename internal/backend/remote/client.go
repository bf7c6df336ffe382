package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

// Config configures a remote Backend.
type Config struct {
	// URL is the service base URL, e.g. "http://localhost:8080".
	URL string

	// Token is sent as a bearer token on every request.
	Token string

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Backend submits circuits to a remote job service.
type Backend struct {
	name   string
	base   *url.URL
	token  string
	client *http.Client
	logger *slog.Logger
}

// New creates a client for the named backend of the service at cfg.URL.
func New(name string, cfg Config) (*Backend, error) {
	if name == "" {
		return nil, errors.New("remote backend name is required")
	}
	if cfg.URL == "" {
		return nil, errors.New("remote service URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote URL %q must be http or https", cfg.URL)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Backend{
		name:   name,
		base:   base,
		token:  cfg.Token,
		client: cfg.HTTPClient,
		logger: cfg.Logger.With("backend", name, "url", base.String()),
	}, nil
}

// Name implements job.Backend.
func (b *Backend) Name() string { return b.name }

// Submit implements job.Backend. It issues exactly one POST; a failed
// submission is not retried.
func (b *Backend) Submit(ctx context.Context, spec *circuit.Spec, shots int) (job.Job, error) {
	var resp JobResponse
	err := b.do(ctx, http.MethodPost, "/v1/jobs", SubmitRequest{
		Backend: b.name,
		Shots:   shots,
		Circuit: spec,
	}, &resp)
	if err != nil {
		return job.Job{}, fmt.Errorf("submit: %w", err)
	}
	b.logger.Debug("submitted", "job_id", resp.ID, "status", resp.Status)
	return job.Job{
		ID:          resp.ID,
		Backend:     resp.Backend,
		Shots:       resp.Shots,
		SubmittedAt: resp.SubmittedAt,
	}, nil
}

// Status implements job.Backend.
func (b *Backend) Status(ctx context.Context, j job.Job) (job.Status, error) {
	resp, err := b.describe(ctx, j.ID)
	if err != nil {
		return "", err
	}
	return job.ParseStatus(string(resp.Status))
}

// Histogram implements job.Backend.
func (b *Backend) Histogram(ctx context.Context, j job.Job) (circuit.Histogram, error) {
	var resp ResultResponse
	if err := b.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(j.ID)+"/result", nil, &resp); err != nil {
		return nil, fmt.Errorf("result of %s: %w", j.ID, err)
	}
	return resp.Counts, nil
}

// ErrorMessage implements job.Backend.
func (b *Backend) ErrorMessage(ctx context.Context, j job.Job) (string, error) {
	resp, err := b.describe(ctx, j.ID)
	if err != nil {
		return "", err
	}
	return resp.ErrorMessage, nil
}

// Cancel asks the service to cancel j.
func (b *Backend) Cancel(ctx context.Context, j job.Job) error {
	if err := b.do(ctx, http.MethodDelete, "/v1/jobs/"+url.PathEscape(j.ID), nil, nil); err != nil {
		return fmt.Errorf("cancel %s: %w", j.ID, err)
	}
	return nil
}

// Backends lists the backend names the service accepts.
func (b *Backend) Backends(ctx context.Context) ([]string, error) {
	var resp BackendsResponse
	if err := b.do(ctx, http.MethodGet, "/v1/backends", nil, &resp); err != nil {
		return nil, fmt.Errorf("list backends: %w", err)
	}
	return resp.Backends, nil
}

func (b *Backend) describe(ctx context.Context, id string) (JobResponse, error) {
	var resp JobResponse
	if err := b.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(id), nil, &resp); err != nil {
		return JobResponse{}, fmt.Errorf("status of %s: %w", id, err)
	}
	return resp, nil
}

func (b *Backend) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var e ErrorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		apiErr.Code = e.Code
		apiErr.Message = e.Error
		return apiErr
	}
	apiErr.Code = http.StatusText(resp.StatusCode)
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

// IsUnauthorized reports whether err is a rejected token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
