package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestDraw_Golden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"draw_n4_o3", []string{"draw"}},
		{"draw_n4_o3_qasm", []string{"draw", "--draw-format", "qasm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, tt.args...)
			require.Equal(t, ExitSuccess, code, stderr)
			newGolden(t).Assert(t, tt.name, []byte(stdout))
		})
	}
}

func TestDraw_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grover.qasm")
	stdout, stderr, code := runCLI(t, "draw", "-n", "4", "-o", "3", "--draw-format", "qasm", "-f", path)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Written to "+path)

	want, err := os.ReadFile("testdata/golden/draw_n4_o3_qasm.golden")
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Quantum circuit: 4 qubits, 1 iteration(s)\n"+string(got), string(want))
}

func TestDraw_JSON(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--format", "json", "draw", "-n", "8", "-o", "5")
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Status string     `json:"status"`
		Data   drawReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 5, resp.Data.Qubits)
	assert.Equal(t, 2, resp.Data.Iterations)
	assert.Equal(t, 3+2+2*(2+1+4*3+1)+3, resp.Data.Ops)
	assert.Contains(t, resp.Data.Circuit, "qreg c_qb[3]")
}

func TestDraw_InvalidInput(t *testing.T) {
	_, stderr, code := runCLI(t, "draw", "-n", "4", "-o", "7")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "INVALID_ORACLE")

	_, _, code = runCLI(t, "draw", "--draw-format", "svg")
	assert.Equal(t, ExitCommandError, code)
}
