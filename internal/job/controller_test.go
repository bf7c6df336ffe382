package job_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
	"github.com/roach88/qsearch/internal/testutil"
)

func testSpec(t *testing.T) *circuit.Spec {
	t.Helper()
	b := circuit.NewBuilder(2)
	b.H(b.Controls()...)
	b.Measure(b.Controls(), b.Classical())
	spec, err := b.Build()
	require.NoError(t, err)
	return spec
}

type runResult struct {
	hist  circuit.Histogram
	err   error
	polls []job.Poll
}

// runWithMock runs the controller against a mock clock that is advanced
// until Run returns.
func runWithMock(t *testing.T, ctx context.Context, backend job.Backend, opts ...job.Option) runResult {
	t.Helper()
	mock := clock.NewMock()
	var res runResult
	opts = append(opts,
		job.WithClock(mock),
		job.WithPollHook(func(p job.Poll) { res.polls = append(res.polls, p) }),
	)
	ctrl := job.NewController(opts...)

	spec := testSpec(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res.hist, res.err = ctrl.Run(ctx, spec, backend, 100)
	}()
	testutil.DriveClock(mock, time.Second, done)
	<-done
	return res
}

func TestRun_DoneReturnsHistogram(t *testing.T) {
	backend := testutil.NewScriptedBackend(
		job.StatusQueued, job.StatusRunning, job.StatusDone,
	).WithHistogram(circuit.Histogram{"11": 100})

	res := runWithMock(t, context.Background(), backend)

	require.NoError(t, res.err)
	assert.Equal(t, circuit.Histogram{"11": 100}, res.hist)
	assert.Equal(t, 1, backend.Submits)
	assert.Equal(t, 3, backend.StatusCalls)
	assert.Equal(t, 1, backend.HistogramCalls, "histogram must be fetched exactly once")
	assert.Equal(t, 0, backend.ErrorCalls)
	assert.Equal(t, 100, backend.LastShots)
}

func TestRun_PollCounterIncreases(t *testing.T) {
	backend := testutil.NewScriptedBackend(
		job.StatusSubmitted, job.StatusQueued, job.StatusQueued, job.StatusRunning, job.StatusDone,
	).WithHistogram(circuit.Histogram{"01": 1})

	res := runWithMock(t, context.Background(), backend)
	require.NoError(t, res.err)

	require.Len(t, res.polls, 5)
	for i, p := range res.polls {
		assert.Equal(t, i, p.Count)
		assert.Equal(t, "scripted-1", p.JobID)
	}
	assert.Equal(t, job.StatusDone, res.polls[4].Status)
}

func TestRun_ErrorCarriesBackendMessage(t *testing.T) {
	backend := testutil.NewScriptedBackend(job.StatusError).
		WithErrorMessage("qubit 3 calibration failed")

	res := runWithMock(t, context.Background(), backend)

	require.Error(t, res.err)
	assert.True(t, job.IsBackendExecution(res.err))
	var je *job.Error
	require.True(t, errors.As(res.err, &je))
	assert.Equal(t, "qubit 3 calibration failed", je.Message)
	assert.Equal(t, "scripted-1", je.JobID)
	assert.Equal(t, 0, backend.HistogramCalls)
	assert.Equal(t, 1, backend.Submits, "no retry after ERROR")
}

func TestRun_BackendCancelled(t *testing.T) {
	backend := testutil.NewScriptedBackend(job.StatusQueued, job.StatusCancelled)

	res := runWithMock(t, context.Background(), backend)

	require.Error(t, res.err)
	assert.True(t, job.IsCancelled(res.err))
	assert.Equal(t, 0, backend.HistogramCalls)
}

func TestRun_SubmitFailure(t *testing.T) {
	backend := testutil.NewScriptedBackend().WithSubmitError(errors.New("queue full"))

	res := runWithMock(t, context.Background(), backend)

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "queue full")
	assert.Equal(t, 0, backend.StatusCalls)
}

func TestRun_Timeout(t *testing.T) {
	backend := testutil.NewScriptedBackend(job.StatusRunning)

	res := runWithMock(t, context.Background(), backend, job.WithTimeout(5*time.Second))

	require.Error(t, res.err)
	assert.True(t, job.IsPollTimeout(res.err))
	assert.LessOrEqual(t, backend.StatusCalls, 5)
	assert.Equal(t, 0, backend.HistogramCalls)
}

func TestRun_ContextCancelled(t *testing.T) {
	backend := testutil.NewScriptedBackend(job.StatusRunning)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := job.NewController(job.WithClock(clock.NewMock()))
	_, err := ctrl.Run(ctx, testSpec(t), backend, 10)

	require.Error(t, err)
	assert.True(t, job.IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.StatusCalls)
}

func TestRun_RealClockShortInterval(t *testing.T) {
	backend := testutil.NewScriptedBackend(job.StatusRunning, job.StatusDone).
		WithHistogram(circuit.Histogram{"10": 3})

	ctrl := job.NewController(job.WithInterval(time.Millisecond))
	hist, err := ctrl.Run(context.Background(), testSpec(t), backend, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, hist.Total())
}

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   job.Status
		terminal bool
	}{
		{job.StatusSubmitted, false},
		{job.StatusQueued, false},
		{job.StatusRunning, false},
		{job.StatusDone, true},
		{job.StatusError, true},
		{job.StatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := job.ParseStatus("running")
	require.NoError(t, err)
	assert.Equal(t, job.StatusRunning, s)

	_, err = job.ParseStatus("VALIDATING")
	assert.Error(t, err)
}
