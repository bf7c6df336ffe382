package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/roach88/qsearch/internal/circuit"
)

// DefaultPollInterval is the fixed wait between two status checks. It suits
// both local execution (sub-second) and queued remote hardware (minutes).
const DefaultPollInterval = time.Second

// Poll describes one iteration of the poll loop.
type Poll struct {
	Count  int // starts at 0, increases by one per iteration
	JobID  string
	Status Status
}

// Controller submits a circuit and waits for its terminal status.
//
// A Controller holds no per-job state and may be reused sequentially or from
// several goroutines; each Run owns its own Job.
type Controller struct {
	interval time.Duration
	timeout  time.Duration
	clock    clock.Clock
	logger   *slog.Logger
	onPoll   func(Poll)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval overrides DefaultPollInterval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTimeout caps the total wait after submission. Zero means unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithClock replaces the wall clock (tests use clock.NewMock()).
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithLogger sets the logger used for per-poll diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithPollHook registers a callback invoked after every status check.
func WithPollHook(fn func(Poll)) Option {
	return func(c *Controller) {
		c.onPoll = fn
	}
}

// NewController creates a Controller with DefaultPollInterval, no timeout and
// the wall clock.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		interval: DefaultPollInterval,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run submits spec to backend once and polls until a terminal status.
//
// On DONE the histogram is fetched exactly once and returned. On ERROR the
// Backend message is returned verbatim inside a BACKEND_EXECUTION error.
// CANCELLED, context cancellation and timeout end the run with a
// CANCELLED or POLL_TIMEOUT error.
func (c *Controller) Run(ctx context.Context, spec *circuit.Spec, backend Backend, shots int) (circuit.Histogram, error) {
	j, err := backend.Submit(ctx, spec, shots)
	if err != nil {
		return nil, fmt.Errorf("submit to %s: %w", backend.Name(), err)
	}
	log := c.logger.With("job_id", j.ID, "backend", backend.Name())
	log.Info("job submitted", "shots", shots)

	start := c.clock.Now()
	var deadline <-chan time.Time
	if c.timeout > 0 {
		timer := c.clock.Timer(c.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			jobsTotal.WithLabelValues("cancelled").Inc()
			return nil, NewCancelledError(j.ID, ctx.Err())
		case <-deadline:
			jobsTotal.WithLabelValues("timeout").Inc()
			return nil, NewPollTimeoutError(j.ID, i)
		case <-c.clock.After(c.interval):
		}

		status, err := backend.Status(ctx, j)
		if err != nil {
			return nil, fmt.Errorf("poll %d of job %s: %w", i, j.ID, err)
		}
		pollsTotal.WithLabelValues(string(status)).Inc()
		log.Info("poll", "poll", i, "status", status)
		if c.onPoll != nil {
			c.onPoll(Poll{Count: i, JobID: j.ID, Status: status})
		}

		if !status.Terminal() {
			continue
		}
		waitDuration.Observe(c.clock.Since(start).Seconds())

		switch status {
		case StatusError:
			jobsTotal.WithLabelValues("error").Inc()
			msg, err := backend.ErrorMessage(ctx, j)
			if err != nil {
				return nil, fmt.Errorf("read error message of job %s: %w", j.ID, err)
			}
			log.Error("job failed", "error", msg)
			return nil, NewBackendExecutionError(j.ID, msg)
		case StatusCancelled:
			jobsTotal.WithLabelValues("cancelled").Inc()
			return nil, NewCancelledError(j.ID, nil)
		}

		jobsTotal.WithLabelValues("done").Inc()
		hist, err := backend.Histogram(ctx, j)
		if err != nil {
			return nil, fmt.Errorf("fetch result of job %s: %w", j.ID, err)
		}
		return hist, nil
	}
}
