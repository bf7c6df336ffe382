package remote

import (
	"fmt"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

// Wire types shared by the client and internal/server.

// SubmitRequest is the body of POST /v1/jobs.
type SubmitRequest struct {
	Backend string        `json:"backend"`
	Shots   int           `json:"shots"`
	Circuit *circuit.Spec `json:"circuit"`
}

// JobResponse describes one job.
type JobResponse struct {
	ID           string     `json:"id"`
	Backend      string     `json:"backend"`
	Status       job.Status `json:"status"`
	Shots        int        `json:"shots"`
	CircuitHash  string     `json:"circuit_hash,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// ResultResponse is the body of GET /v1/jobs/{id}/result.
type ResultResponse struct {
	ID     string            `json:"id"`
	Counts circuit.Histogram `json:"counts"`
}

// BackendsResponse is the body of GET /v1/backends.
type BackendsResponse struct {
	Backends []string `json:"backends"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeBadRequest     = "BAD_REQUEST"
	CodeUnknownBackend = "UNKNOWN_BACKEND"
	CodeNotFound       = "NOT_FOUND"
	CodeNotDone        = "NOT_DONE"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL"
)

// APIError is a non-2xx response decoded by the client.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote %d %s: %s", e.StatusCode, e.Code, e.Message)
}
