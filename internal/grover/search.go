package grover

import (
	"context"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

// Request is one search invocation.
type Request struct {
	Problem
	Shots int
}

// Plan is a validated request with its circuit, ready for execution.
type Plan struct {
	Params Parameters
	Spec   *circuit.Spec
	Shots  int
}

// Result is the outcome of a completed search.
type Result struct {
	Plan
	Histogram circuit.Histogram
	Answer    Answer
}

// Prepare validates req and builds its circuit. It performs no I/O, so input
// errors surface before any backend is contacted.
func Prepare(req Request) (*Plan, error) {
	params, err := Resolve(req.Problem)
	if err != nil {
		return nil, err
	}
	if req.Shots < 1 {
		return nil, NewInvalidShotsError(req.Shots)
	}
	spec, err := Build(params)
	if err != nil {
		return nil, err
	}
	return &Plan{Params: params, Spec: spec, Shots: req.Shots}, nil
}

// Execute runs a prepared plan on backend and interprets the histogram.
func Execute(ctx context.Context, plan *Plan, backend job.Backend, ctrl *job.Controller) (*Result, error) {
	hist, err := ctrl.Run(ctx, plan.Spec, backend, plan.Shots)
	if err != nil {
		return nil, err
	}
	answer, err := Interpret(hist)
	if err != nil {
		return nil, err
	}
	return &Result{Plan: *plan, Histogram: hist, Answer: answer}, nil
}

// Search is Prepare followed by Execute.
func Search(ctx context.Context, req Request, backend job.Backend, ctrl *job.Controller) (*Result, error) {
	plan, err := Prepare(req)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, plan, backend, ctrl)
}
