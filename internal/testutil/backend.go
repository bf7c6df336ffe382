package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

// ScriptedBackend is a job.Backend whose status sequence is fixed up front.
//
// Each Status call returns the next scripted status; the last one repeats.
// Call counters let tests assert the exactly-once fetch rules of the
// controller.
type ScriptedBackend struct {
	mu sync.Mutex

	name      string
	statuses  []job.Status
	hist      circuit.Histogram
	errMsg    string
	submitErr error

	next int

	Submits        int
	StatusCalls    int
	HistogramCalls int
	ErrorCalls     int
	LastSpec       *circuit.Spec
	LastShots      int
}

// NewScriptedBackend creates a backend reporting statuses in order.
// With no statuses it reports DONE immediately.
func NewScriptedBackend(statuses ...job.Status) *ScriptedBackend {
	if len(statuses) == 0 {
		statuses = []job.Status{job.StatusDone}
	}
	return &ScriptedBackend{name: "scripted", statuses: statuses}
}

// WithHistogram sets the histogram returned for DONE jobs.
func (b *ScriptedBackend) WithHistogram(h circuit.Histogram) *ScriptedBackend {
	b.hist = h
	return b
}

// WithErrorMessage sets the message returned for ERROR jobs.
func (b *ScriptedBackend) WithErrorMessage(msg string) *ScriptedBackend {
	b.errMsg = msg
	return b
}

// WithSubmitError makes Submit fail.
func (b *ScriptedBackend) WithSubmitError(err error) *ScriptedBackend {
	b.submitErr = err
	return b
}

// Name implements job.Backend.
func (b *ScriptedBackend) Name() string { return b.name }

// Submit implements job.Backend.
func (b *ScriptedBackend) Submit(_ context.Context, spec *circuit.Spec, shots int) (job.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Submits++
	if b.submitErr != nil {
		return job.Job{}, b.submitErr
	}
	b.LastSpec = spec
	b.LastShots = shots
	return job.Job{ID: "scripted-1", Backend: b.name, Shots: shots, SubmittedAt: time.Unix(0, 0)}, nil
}

// Status implements job.Backend.
func (b *ScriptedBackend) Status(_ context.Context, _ job.Job) (job.Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.StatusCalls++
	s := b.statuses[b.next]
	if b.next < len(b.statuses)-1 {
		b.next++
	}
	return s, nil
}

// Histogram implements job.Backend.
func (b *ScriptedBackend) Histogram(_ context.Context, _ job.Job) (circuit.Histogram, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.HistogramCalls++
	if b.hist == nil {
		return nil, errors.New("scripted backend has no histogram")
	}
	return b.hist.Clone(), nil
}

// ErrorMessage implements job.Backend.
func (b *ScriptedBackend) ErrorMessage(_ context.Context, _ job.Job) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ErrorCalls++
	return b.errMsg, nil
}
