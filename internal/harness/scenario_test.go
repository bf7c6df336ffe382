package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Scripted(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/scripted_done.yaml")
	require.NoError(t, err)

	assert.Equal(t, "scripted_done", s.Name)
	assert.Equal(t, SearchStep{N: 4, Oracle: 3, Shots: 100}, s.Search)
	assert.Equal(t, KindScripted, s.Backend.Kind)
	assert.Equal(t, []string{"QUEUED", "RUNNING", "DONE"}, s.Backend.Statuses)
	assert.Equal(t, map[string]int{"11": 100}, s.Backend.Counts)
	require.NotNil(t, s.Expect.Answer)
	assert.Equal(t, 3, *s.Expect.Answer)
	require.NotNil(t, s.Expect.Polls)
	assert.Equal(t, 3, *s.Expect.Polls)
}

func TestLoadScenario_Local(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/local_qasm_seeded.yaml")
	require.NoError(t, err)

	assert.Equal(t, KindLocal, s.Backend.Kind)
	assert.Equal(t, "qasm_simulator", s.Backend.Name)
	assert.Equal(t, uint64(7), s.Backend.Seed)
	assert.Nil(t, s.Expect.Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted}\nexpect: {answr: 3}\n",
			msg:  "answr",
		},
		{
			name: "missing name",
			yaml: "description: d\nbackend: {kind: scripted}\n",
			msg:  "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nbackend: {kind: scripted}\n",
			msg:  "description is required",
		},
		{
			name: "missing kind",
			yaml: "name: x\ndescription: d\n",
			msg:  "backend.kind is required",
		},
		{
			name: "unknown kind",
			yaml: "name: x\ndescription: d\nbackend: {kind: remote}\n",
			msg:  "unknown backend kind",
		},
		{
			name: "bad scripted status",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted, statuses: [DONE, FINISHED]}\n",
			msg:  "backend.statuses[1]",
		},
		{
			name: "unknown simulator",
			yaml: "name: x\ndescription: d\nbackend: {kind: local, name: ibmq_lima}\n",
			msg:  "not a local simulator",
		},
		{
			name: "script on local",
			yaml: "name: x\ndescription: d\nbackend: {kind: local, name: qasm_simulator, statuses: [DONE]}\n",
			msg:  "only valid for scripted",
		},
		{
			name: "name on scripted",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted, name: qasm_simulator}\n",
			msg:  "only valid for local",
		},
		{
			name: "error and answer",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted}\nexpect: {error: CANCELLED, answer: 1}\n",
			msg:  "cannot be combined",
		},
		{
			name: "message without error",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted}\nexpect: {message: boom}\n",
			msg:  "requires expect.error",
		},
		{
			name: "negative polls",
			yaml: "name: x\ndescription: d\nbackend: {kind: scripted}\nexpect: {polls: -1}\n",
			msg:  "non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
