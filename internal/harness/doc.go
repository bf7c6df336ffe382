// Package harness runs end-to-end search scenarios described in YAML.
//
// A scenario fixes one search request, the backend that executes it and the
// outcome the run must produce. The harness drives grover.Search through the
// job controller exactly as the CLI does and records every lifecycle step as
// a trace, so regressions show up as golden-file diffs.
//
// # Scenario Format
//
//	name: scripted_done
//	description: "Backend reports QUEUED then DONE"
//	search:
//	  n: 4
//	  oracle: 3
//	  shots: 100
//	backend:
//	  kind: scripted
//	  statuses: [QUEUED, RUNNING, DONE]
//	  counts: {"11": 100}
//	expect:
//	  answer: 3
//	  bitstring: "11"
//	  polls: 3
//
// Backend kinds:
//   - scripted: statuses are reported in order, the last one repeating.
//     counts and error_message are returned for DONE and ERROR.
//   - local: one of the in-process simulators, selected by name. seed
//     fixes sampling for qasm_simulator.
//
// Expectations are optional and checked only when present. A scenario that
// expects an error names its code (BACKEND_EXECUTION, EMPTY_HISTOGRAM,
// INVALID_ORACLE and so on) and must not expect an answer.
//
// # Golden Traces
//
// RunWithGolden compares the trace against testdata/golden/<name>.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
//
// Poll events are traced one per status call for scripted backends. Local
// backends finish on their own schedule, so only the terminal poll is kept.
package harness
