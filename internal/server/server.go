package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/qsearch/internal/backend/local"
	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
	"github.com/roach88/qsearch/internal/store"
)

// DefaultIdleInterval is how long the worker sleeps when the queue is empty
// and no submission wakes it.
const DefaultIdleInterval = 500 * time.Millisecond

const shutdownGrace = 5 * time.Second

// Server owns the HTTP API and the worker.
type Server struct {
	store     *store.Store
	token     string
	executors map[string]*local.Backend
	ids       job.IDGenerator
	clock     clock.Clock
	logger    *slog.Logger
	idle      time.Duration
	seed      uint64

	wake chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on API routes.
// An empty token leaves the API open.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces the wall clock used by the idle wait.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithIDs replaces the UUIDv7 job ID generator.
func WithIDs(ids job.IDGenerator) Option {
	return func(s *Server) { s.ids = ids }
}

// WithIdleInterval overrides DefaultIdleInterval.
func WithIdleInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithSeed fixes the sampling seed of the qasm simulator.
func WithSeed(seed uint64) Option {
	return func(s *Server) { s.seed = seed }
}

// New creates a Server over st. The caller keeps ownership of st.
func New(st *store.Store, opts ...Option) (*Server, error) {
	s := &Server{
		store:  st,
		ids:    job.UUIDv7Generator{},
		clock:  clock.New(),
		logger: slog.Default(),
		idle:   DefaultIdleInterval,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.executors = make(map[string]*local.Backend)
	for _, name := range local.Names() {
		b, err := local.New(name, local.Config{Seed: s.seed, Logger: s.logger})
		if err != nil {
			return nil, fmt.Errorf("create executor %s: %w", name, err)
		}
		s.executors[name] = b
	}
	return s, nil
}

// Backends returns the accepted backend names in ascending order.
func (s *Server) Backends() []string {
	names := make([]string, 0, len(s.executors))
	for name := range s.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve runs the API on ln and the worker until ctx is cancelled, then
// shuts both down. Jobs left RUNNING by a previous process are requeued
// first.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	n, err := s.store.Requeue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("requeued interrupted jobs", "count", n)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String(), "auth", s.token != "")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.Work(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Work claims and executes queued jobs until ctx is cancelled.
func (s *Server) Work(ctx context.Context) error {
	for {
		ran, err := s.RunOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.logger.Error("worker", "error", err)
		}
		if ran {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		case <-s.clock.After(s.idle):
		}
	}
}

// RunOnce executes the oldest queued job, if any, and reports whether one ran.
func (s *Server) RunOnce(ctx context.Context) (bool, error) {
	rec, ok, err := s.store.ClaimNext(ctx)
	if err != nil || !ok {
		return false, err
	}
	logger := s.logger.With("job_id", rec.ID, "backend", rec.Backend)
	logger.Debug("claimed", "shots", rec.Shots, "qubits", rec.Circuit.NumQubits())

	exec, ok := s.executors[rec.Backend]
	if !ok {
		finishedTotal.WithLabelValues("error").Inc()
		return true, s.store.Fail(ctx, rec.ID, fmt.Sprintf("unknown backend %q", rec.Backend))
	}

	start := s.clock.Now()
	hist, execErr := execute(exec, rec)
	executionDuration.WithLabelValues(rec.Backend).Observe(s.clock.Since(start).Seconds())

	if execErr != nil {
		err = s.store.Fail(ctx, rec.ID, execErr.Error())
	} else {
		err = s.store.Complete(ctx, rec.ID, hist)
	}
	switch {
	case errors.Is(err, store.ErrConflict):
		logger.Info("job cancelled while running")
		finishedTotal.WithLabelValues("cancelled").Inc()
		return true, nil
	case err != nil:
		return true, err
	case execErr != nil:
		logger.Debug("failed", "error", execErr)
		finishedTotal.WithLabelValues("error").Inc()
	default:
		logger.Debug("done")
		finishedTotal.WithLabelValues("done").Inc()
	}
	return true, nil
}

// execute runs rec on exec and reports a panic as a job error.
func execute(exec *local.Backend, rec store.Record) (hist circuit.Histogram, err error) {
	defer func() {
		if r := recover(); r != nil {
			hist, err = nil, fmt.Errorf("executor panic: %v", r)
		}
	}()
	return exec.Execute(rec.Circuit, rec.Shots)
}

// notify wakes the worker without blocking.
func (s *Server) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close releases the executors.
func (s *Server) Close() error {
	for _, b := range s.executors {
		b.Close()
	}
	return nil
}
