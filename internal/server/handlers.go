package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/qsearch/internal/backend/remote"
	"github.com/roach88/qsearch/internal/job"
	"github.com/roach88/qsearch/internal/store"
)

const maxRequestBytes = 8 << 20

// Handler returns the HTTP API. /healthz and /metrics are never
// authenticated.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/jobs", s.instrument("submit", s.handleSubmit))
	api.HandleFunc("GET /v1/jobs/{id}", s.instrument("status", s.handleStatus))
	api.HandleFunc("GET /v1/jobs/{id}/result", s.instrument("result", s.handleResult))
	api.HandleFunc("DELETE /v1/jobs/{id}", s.instrument("cancel", s.handleCancel))
	api.HandleFunc("GET /v1/backends", s.instrument("backends", s.handleBackends))

	mux := http.NewServeMux()
	mux.Handle("/v1/", s.authenticate(api))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				requestsTotal.WithLabelValues("auth", strconv.Itoa(http.StatusUnauthorized)).Inc()
				writeError(w, http.StatusUnauthorized, remote.CodeUnauthorized, "invalid or missing token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req remote.SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, remote.CodeBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if _, ok := s.executors[req.Backend]; !ok {
		writeError(w, http.StatusBadRequest, remote.CodeUnknownBackend,
			fmt.Sprintf("unknown backend %q (available: %s)", req.Backend, strings.Join(s.Backends(), ", ")))
		return
	}
	if req.Shots < 1 {
		writeError(w, http.StatusBadRequest, remote.CodeBadRequest, "shots must be positive")
		return
	}
	if req.Circuit == nil {
		writeError(w, http.StatusBadRequest, remote.CodeBadRequest, "circuit is required")
		return
	}

	rec, err := s.store.Insert(r.Context(), s.ids.Generate(), req.Backend, req.Circuit, req.Shots)
	if err != nil {
		s.logger.Error("insert job", "error", err)
		writeError(w, http.StatusInternalServerError, remote.CodeInternal, "could not enqueue job")
		return
	}
	submittedTotal.WithLabelValues(req.Backend).Inc()
	s.logger.Debug("enqueued", "job_id", rec.ID, "backend", rec.Backend, "shots", rec.Shots)
	s.notify()

	writeJSON(w, http.StatusCreated, toJobResponse(rec))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(rec))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if rec.Status != job.StatusDone {
		writeError(w, http.StatusConflict, remote.CodeNotDone,
			fmt.Sprintf("job %s is %s", rec.ID, rec.Status))
		return
	}
	writeJSON(w, http.StatusOK, remote.ResultResponse{ID: rec.ID, Counts: rec.Counts})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, remote.CodeNotFound, fmt.Sprintf("job %s not found", id))
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, remote.CodeConflict, err.Error())
	case err != nil:
		s.logger.Error("cancel job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, remote.CodeInternal, "could not cancel job")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBackends(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, remote.BackendsResponse{Backends: s.Backends()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, remote.CodeInternal, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	id := r.PathValue("id")
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, remote.CodeNotFound, fmt.Sprintf("job %s not found", id))
		return store.Record{}, false
	}
	if err != nil {
		s.logger.Error("get job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, remote.CodeInternal, "could not read job")
		return store.Record{}, false
	}
	return rec, true
}

func toJobResponse(rec store.Record) remote.JobResponse {
	return remote.JobResponse{
		ID:           rec.ID,
		Backend:      rec.Backend,
		Status:       rec.Status,
		Shots:        rec.Shots,
		CircuitHash:  rec.CircuitHash,
		ErrorMessage: rec.ErrorMessage,
		SubmittedAt:  rec.SubmittedAt,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, remote.ErrorResponse{Code: errCode, Error: message})
}
