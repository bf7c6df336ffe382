package job

import (
	"context"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
)

// Job is the caller-side handle of a submitted circuit.
// The Backend owns its status; the handle only identifies it.
type Job struct {
	ID          string
	Backend     string
	Shots       int
	SubmittedAt time.Time
}

// Backend executes circuits. Implementations live in internal/backend.
//
// Selection and authentication happen before a Backend value exists
// (see internal/provider).
type Backend interface {
	// Name identifies the concrete backend (e.g. "qasm_simulator").
	Name() string

	// Submit enqueues spec for `shots` executions.
	Submit(ctx context.Context, spec *circuit.Spec, shots int) (Job, error)

	// Status returns the current status of j.
	Status(ctx context.Context, j Job) (Status, error)

	// Histogram returns the measurement counts of a DONE job.
	Histogram(ctx context.Context, j Job) (circuit.Histogram, error)

	// ErrorMessage returns the backend-supplied reason of an ERROR job.
	ErrorMessage(ctx context.Context, j Job) (string, error)
}
