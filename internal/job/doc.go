// Package job drives a circuit through a Backend until it reaches a terminal
// status.
//
// LIFECYCLE:
//
//	SUBMITTED -> {QUEUED, RUNNING} -> {DONE, ERROR, CANCELLED}
//
// Every transition belongs to the Backend. The Controller submits once, then
// polls at a fixed interval, observing but never setting the status. There is
// no retry: a failed job surfaces as an error and the caller decides whether to
// run the whole pipeline again.
//
// The poll loop is the only blocking point of a search. It honours context
// cancellation and an optional overall timeout; neither cancels the job on the
// Backend side.
package job
