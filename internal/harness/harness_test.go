package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAll(t *testing.T) []*Scenario {
	t.Helper()
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		require.NoError(t, err, p)
		scenarios = append(scenarios, s)
	}
	return scenarios
}

func TestRun_AllScenariosPass(t *testing.T) {
	for _, s := range loadAll(t) {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_GoldenTraces(t *testing.T) {
	for _, s := range loadAll(t) {
		golden := filepath.Join("testdata", "golden", s.Name+".golden")
		if _, err := os.Stat(golden); err != nil {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass)
		})
	}
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	s, err := ParseScenario([]byte(strings.Join([]string{
		"name: wrong_expectations",
		"description: every check disagrees with the run",
		"search: {n: 4, oracle: 3, shots: 100}",
		"backend: {kind: scripted, statuses: [RUNNING, DONE], counts: {\"11\": 100}}",
		"expect: {answer: 2, bitstring: \"10\", count: 5, polls: 4, statuses: [DONE]}",
	}, "\n")))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "answer: expected 2, got 3")
}

func TestRun_UnexpectedError(t *testing.T) {
	s, err := ParseScenario([]byte(strings.Join([]string{
		"name: surprise_error",
		"description: the backend fails but no error is expected",
		"search: {n: 4, oracle: 1, shots: 10}",
		"backend: {kind: scripted, statuses: [ERROR], error_message: calibration}",
		"expect: {answer: 1}",
	}, "\n")))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], "calibration")
}

func TestRun_WrongErrorCode(t *testing.T) {
	s, err := ParseScenario([]byte(strings.Join([]string{
		"name: wrong_code",
		"description: cancellation reported where an execution error was expected",
		"search: {n: 4, oracle: 1, shots: 10}",
		"backend: {kind: scripted, statuses: [CANCELLED]}",
		"expect: {error: BACKEND_EXECUTION}",
	}, "\n")))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected BACKEND_EXECUTION, got CANCELLED")
}

func TestRun_CancelledContextIsTraced(t *testing.T) {
	s, err := ParseScenario([]byte(strings.Join([]string{
		"name: interrupted",
		"description: polling stops when the caller gives up",
		"search: {n: 4, oracle: 1, shots: 10}",
		"backend: {kind: scripted, statuses: [RUNNING]}",
		"expect: {error: CANCELLED, message: polling interrupted}",
	}, "\n")))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Run(ctx, s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Equal(t, "CANCELLED", last.Code)
}

func TestHarness_UnknownBackendKind(t *testing.T) {
	_, err := New().Run(context.Background(), &Scenario{
		Name:    "bad",
		Backend: BackendSetup{Kind: "quantum-cloud"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend kind")
}

func TestMarshalSnapshot_TrailingNewline(t *testing.T) {
	r := NewResult()
	r.Trace = append(r.Trace, TraceEvent{Type: EventAnswer, Value: intPtr(0), Bitstring: "00", Count: 1})

	data, err := MarshalSnapshot("zero", r)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(data), "}\n"))
	assert.Contains(t, string(data), `"value": 0`)
	assert.NotContains(t, string(data), `"poll"`)
}
