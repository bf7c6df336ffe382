package local

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

// Backend names served by the local provider.
const (
	// QASMSimulator samples shots at random from the final distribution.
	QASMSimulator = "qasm_simulator"

	// StatevectorSimulator returns the expected counts of the final
	// distribution, so results are reproducible without a seed.
	StatevectorSimulator = "statevector_simulator"
)

// Names lists the backends accepted by New.
func Names() []string {
	return []string{QASMSimulator, StatevectorSimulator}
}

// Config configures a local Backend.
type Config struct {
	// Seed fixes the sampling sequence. Zero picks a random seed.
	Seed uint64

	// IDs generates job IDs. Defaults to job.UUIDv7Generator.
	IDs job.IDGenerator

	Logger *slog.Logger
}

type entry struct {
	status job.Status
	hist   circuit.Histogram
	errMsg string
}

// Backend runs circuits in-process, one job at a time.
//
// Submit returns immediately with a QUEUED job; a background goroutine moves
// it through RUNNING to DONE or ERROR. Close cancels jobs still queued.
type Backend struct {
	name   string
	ids    job.IDGenerator
	logger *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	mu   sync.Mutex
	jobs map[string]*entry

	run    sync.Mutex // serializes execution
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the named local backend.
func New(name string, cfg Config) (*Backend, error) {
	if name != QASMSimulator && name != StatevectorSimulator {
		return nil, fmt.Errorf("unknown local backend %q (available: %v)", name, Names())
	}
	if cfg.IDs == nil {
		cfg.IDs = job.UUIDv7Generator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Backend{
		name:   name,
		ids:    cfg.IDs,
		logger: cfg.Logger.With("backend", name),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		jobs:   make(map[string]*entry),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Name implements job.Backend.
func (b *Backend) Name() string { return b.name }

// Submit implements job.Backend.
func (b *Backend) Submit(_ context.Context, spec *circuit.Spec, shots int) (job.Job, error) {
	if shots < 1 {
		return job.Job{}, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if b.ctx.Err() != nil {
		return job.Job{}, fmt.Errorf("local backend %s is closed", b.name)
	}
	j := job.Job{ID: b.ids.Generate(), Backend: b.name, Shots: shots, SubmittedAt: time.Now()}

	b.mu.Lock()
	b.jobs[j.ID] = &entry{status: job.StatusQueued}
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.execute(j, spec)
	}()
	return j, nil
}

func (b *Backend) execute(j job.Job, spec *circuit.Spec) {
	b.run.Lock()
	defer b.run.Unlock()

	if b.ctx.Err() != nil {
		b.set(j.ID, &entry{status: job.StatusCancelled})
		return
	}
	b.set(j.ID, &entry{status: job.StatusRunning})

	hist, err := b.Execute(spec, j.Shots)
	if err != nil {
		b.logger.Debug("job failed", "job_id", j.ID, "error", err)
		b.set(j.ID, &entry{status: job.StatusError, errMsg: err.Error()})
		return
	}
	b.set(j.ID, &entry{status: job.StatusDone, hist: hist})
}

// Execute runs spec synchronously and returns its histogram.
func (b *Backend) Execute(spec *circuit.Spec, shots int) (circuit.Histogram, error) {
	dist, err := Simulate(spec)
	if err != nil {
		return nil, err
	}
	if b.name == StatevectorSimulator {
		return dist.Expected(shots), nil
	}
	b.rngMu.Lock()
	defer b.rngMu.Unlock()
	return dist.Sample(shots, b.rng), nil
}

func (b *Backend) set(id string, e *entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs[id] = e
}

func (b *Backend) get(id string) (*entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.jobs[id]
	if !ok {
		return nil, fmt.Errorf("unknown job %q", id)
	}
	return e, nil
}

// Status implements job.Backend.
func (b *Backend) Status(_ context.Context, j job.Job) (job.Status, error) {
	e, err := b.get(j.ID)
	if err != nil {
		return "", err
	}
	return e.status, nil
}

// Histogram implements job.Backend.
func (b *Backend) Histogram(_ context.Context, j job.Job) (circuit.Histogram, error) {
	e, err := b.get(j.ID)
	if err != nil {
		return nil, err
	}
	if e.status != job.StatusDone {
		return nil, fmt.Errorf("job %s is %s, not DONE", j.ID, e.status)
	}
	return e.hist.Clone(), nil
}

// ErrorMessage implements job.Backend.
func (b *Backend) ErrorMessage(_ context.Context, j job.Job) (string, error) {
	e, err := b.get(j.ID)
	if err != nil {
		return "", err
	}
	return e.errMsg, nil
}

// Jobs returns the IDs of all known jobs in ascending order.
func (b *Backend) Jobs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.jobs))
	for id := range b.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close cancels queued jobs and waits for the running one to finish.
func (b *Backend) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
