// Package server is the qsearch job service: the HTTP side of the remote
// protocol (see internal/backend/remote) backed by a SQLite job queue, plus
// a worker that executes queued circuits on the local simulators.
//
// Submissions only enqueue. The worker claims one job at a time from the
// store, runs it, and records DONE or ERROR; a job cancelled while running
// keeps its CANCELLED status.
package server
