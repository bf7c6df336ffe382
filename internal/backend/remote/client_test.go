package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

func testSpec(t *testing.T) *circuit.Spec {
	t.Helper()
	b := circuit.NewBuilder(1)
	b.H(b.Controls()...)
	b.Measure(b.Controls(), b.Classical())
	spec, err := b.Build()
	require.NoError(t, err)
	return spec
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", Config{URL: "http://x"})
	assert.Error(t, err)
	_, err = New("qasm_simulator", Config{})
	assert.Error(t, err)
	_, err = New("qasm_simulator", Config{URL: "ftp://x"})
	assert.Error(t, err)

	b, err := New("qasm_simulator", Config{URL: "http://example.test/"})
	require.NoError(t, err)
	assert.Equal(t, "qasm_simulator", b.Name())
}

func TestSubmit_SendsCircuitAndToken(t *testing.T) {
	var got SubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/jobs", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, JobResponse{
			ID:          "j-1",
			Backend:     got.Backend,
			Status:      job.StatusQueued,
			Shots:       got.Shots,
			SubmittedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL, Token: "secret"})
	require.NoError(t, err)

	spec := testSpec(t)
	j, err := b.Submit(context.Background(), spec, 25)
	require.NoError(t, err)

	assert.Equal(t, "j-1", j.ID)
	assert.Equal(t, 25, j.Shots)
	assert.Equal(t, "qasm_simulator", got.Backend)
	assert.Equal(t, 25, got.Shots)
	require.NotNil(t, got.Circuit)
	assert.Equal(t, spec.Ops(), got.Circuit.Ops())
}

func TestSubmit_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Code: CodeInternal, Error: "queue full"})
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = b.Submit(context.Background(), testSpec(t), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
	assert.EqualValues(t, 1, calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, CodeInternal, apiErr.Code)
}

func TestStatusHistogramAndErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/jobs/j-1":
			writeJSON(w, http.StatusOK, JobResponse{ID: "j-1", Status: "done"})
		case "/v1/jobs/j-1/result":
			writeJSON(w, http.StatusOK, ResultResponse{ID: "j-1", Counts: circuit.Histogram{"1": 4, "0": 6}})
		case "/v1/jobs/j-2":
			writeJSON(w, http.StatusOK, JobResponse{ID: "j-2", Status: job.StatusError, ErrorMessage: "calibration failed"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	st, err := b.Status(ctx, job.Job{ID: "j-1"})
	require.NoError(t, err)
	assert.Equal(t, job.StatusDone, st)

	h, err := b.Histogram(ctx, job.Job{ID: "j-1"})
	require.NoError(t, err)
	assert.Equal(t, circuit.Histogram{"1": 4, "0": 6}, h)

	msg, err := b.ErrorMessage(ctx, job.Job{ID: "j-2"})
	require.NoError(t, err)
	assert.Equal(t, "calibration failed", msg)

	_, err = b.Status(ctx, job.Job{ID: "nope"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: CodeUnauthorized, Error: "invalid token"})
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL, Token: "wrong"})
	require.NoError(t, err)

	_, err = b.Backends(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestCancel(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, b.Cancel(context.Background(), job.Job{ID: "j-9"}))
	assert.Equal(t, http.MethodDelete, method)
}

func TestContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	b, err := New("qasm_simulator", Config{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Status(ctx, job.Job{ID: "j"})
	assert.ErrorIs(t, err, context.Canceled)
}
