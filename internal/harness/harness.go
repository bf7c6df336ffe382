package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/qsearch/internal/backend/local"
	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/grover"
	"github.com/roach88/qsearch/internal/job"
	"github.com/roach88/qsearch/internal/testutil"
)

// PollInterval is the controller interval used for every scenario.
const PollInterval = time.Millisecond

// LocalJobID is the job ID assigned to the first job of a local backend.
const LocalJobID = "scenario-1"

// Harness executes scenarios.
type Harness struct {
	logger   *slog.Logger
	interval time.Duration
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes controller and backend logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		interval: PollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes the scenario and checks its expectations.
//
// Search failures are part of the trace, not returned: the error return is
// reserved for scenarios that cannot be set up at all.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	backend, cleanup, err := h.backend(scenario.Backend)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	defer cleanup()

	result := NewResult()
	req := grover.Request{
		Problem: grover.Problem{N: scenario.Search.N, Oracle: scenario.Search.Oracle},
		Shots:   scenario.Search.Shots,
	}

	plan, err := grover.Prepare(req)
	if err != nil {
		result.Trace = append(result.Trace, errorEvent(err))
		check(result, scenario.Expect, nil, err)
		return result, nil
	}
	result.Trace = append(result.Trace, TraceEvent{
		Type:       EventSubmit,
		Backend:    backend.Name(),
		Shots:      plan.Shots,
		Qubits:     plan.Params.Qubits(),
		Iterations: intPtr(plan.Params.Iterations),
	})

	var (
		mu    sync.Mutex
		polls []job.Poll
	)
	ctrl := job.NewController(
		job.WithInterval(h.interval),
		job.WithLogger(h.logger),
		job.WithPollHook(func(p job.Poll) {
			mu.Lock()
			defer mu.Unlock()
			polls = append(polls, p)
		}),
	)

	res, err := grover.Execute(ctx, plan, backend, ctrl)

	mu.Lock()
	result.Trace = append(result.Trace, pollEvents(scenario.Backend.Kind, polls)...)
	mu.Unlock()

	if err != nil {
		result.Trace = append(result.Trace, errorEvent(err))
		check(result, scenario.Expect, nil, err)
		return result, nil
	}
	result.Trace = append(result.Trace, TraceEvent{
		Type:      EventAnswer,
		Value:     intPtr(res.Answer.Value),
		Bitstring: res.Answer.Bitstring,
		Count:     res.Answer.Count,
	})
	check(result, scenario.Expect, &res.Answer, nil)
	return result, nil
}

func (h *Harness) backend(setup BackendSetup) (job.Backend, func(), error) {
	switch setup.Kind {
	case KindScripted:
		statuses := make([]job.Status, 0, len(setup.Statuses))
		for _, s := range setup.Statuses {
			st, err := job.ParseStatus(s)
			if err != nil {
				return nil, nil, err
			}
			statuses = append(statuses, st)
		}
		b := testutil.NewScriptedBackend(statuses...).WithErrorMessage(setup.ErrorMessage)
		if setup.Counts != nil {
			b = b.WithHistogram(circuit.Histogram(setup.Counts))
		}
		return b, func() {}, nil
	case KindLocal:
		b, err := local.New(setup.Name, local.Config{
			Seed:   setup.Seed,
			IDs:    testutil.NewFixedIDGenerator(LocalJobID),
			Logger: h.logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend kind %q", setup.Kind)
	}
}

// pollEvents converts controller polls to trace events. Local simulators
// progress on their own goroutine, so only their terminal poll is stable.
func pollEvents(kind string, polls []job.Poll) []TraceEvent {
	var events []TraceEvent
	for _, p := range polls {
		if kind == KindLocal {
			if !p.Status.Terminal() {
				continue
			}
			events = append(events, TraceEvent{Type: EventPoll, JobID: p.JobID, Status: string(p.Status)})
			continue
		}
		events = append(events, TraceEvent{
			Type:   EventPoll,
			JobID:  p.JobID,
			Poll:   intPtr(p.Count),
			Status: string(p.Status),
		})
	}
	return events
}

func errorEvent(err error) TraceEvent {
	code, msg := describe(err)
	return TraceEvent{Type: EventError, Code: code, Message: msg}
}

// describe extracts the stable code and message of a search failure.
func describe(err error) (string, string) {
	var gErr *grover.Error
	if errors.As(err, &gErr) {
		return string(gErr.Code), gErr.Message
	}
	var jErr *job.Error
	if errors.As(err, &jErr) {
		return string(jErr.Code), jErr.Message
	}
	return "ERROR", err.Error()
}

func check(result *Result, expect Expect, answer *grover.Answer, err error) {
	if err != nil {
		code, msg := describe(err)
		switch {
		case expect.Error == "":
			result.AddError(fmt.Sprintf("unexpected error: %v", err))
		case expect.Error != code:
			result.AddError(fmt.Sprintf("error code: expected %s, got %s (%v)", expect.Error, code, err))
		case expect.Message != "" && expect.Message != msg:
			result.AddError(fmt.Sprintf("error message: expected %q, got %q", expect.Message, msg))
		}
	} else {
		if expect.Error != "" {
			result.AddError(fmt.Sprintf("expected error %s, got answer %d", expect.Error, answer.Value))
		}
		if expect.Answer != nil && *expect.Answer != answer.Value {
			result.AddError(fmt.Sprintf("answer: expected %d, got %d", *expect.Answer, answer.Value))
		}
		if expect.Bitstring != "" && expect.Bitstring != answer.Bitstring {
			result.AddError(fmt.Sprintf("bitstring: expected %q, got %q", expect.Bitstring, answer.Bitstring))
		}
		if expect.Count != nil && *expect.Count != answer.Count {
			result.AddError(fmt.Sprintf("count: expected %d, got %d", *expect.Count, answer.Count))
		}
	}

	polls := result.Polls()
	if expect.Polls != nil && *expect.Polls != len(polls) {
		result.AddError(fmt.Sprintf("polls: expected %d, got %d", *expect.Polls, len(polls)))
	}
	if expect.Statuses != nil {
		got := make([]string, len(polls))
		for i, p := range polls {
			got[i] = p.Status
		}
		want := make([]string, len(expect.Statuses))
		for i, s := range expect.Statuses {
			st, _ := job.ParseStatus(s)
			want[i] = string(st)
		}
		if !slices.Equal(want, got) {
			result.AddError(fmt.Sprintf("statuses: expected %v, got %v", want, got))
		}
	}
}
