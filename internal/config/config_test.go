package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 4, c.N)
	assert.Equal(t, 3, c.Oracle)
	assert.Equal(t, "local", c.Provider)
	assert.Equal(t, "qasm_simulator", c.Backend)
	assert.Equal(t, 10, c.Shots)
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Zero(t, c.Timeout)
	assert.False(t, c.Draw)
}

func TestParse_OverridesOnlyWhatIsSet(t *testing.T) {
	src := `
search: {
	n:      16
	oracle: 9
}
poll: timeout: "2m"
`
	c, err := Parse("test.cue", []byte(src), Default())
	require.NoError(t, err)

	assert.Equal(t, 16, c.N)
	assert.Equal(t, 9, c.Oracle)
	assert.Equal(t, 10, c.Shots)
	assert.Equal(t, "local", c.Provider)
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Equal(t, 2*time.Minute, c.Timeout)
}

func TestParse_FullFile(t *testing.T) {
	src := `
search: {n: 32, oracle: 17, shots: 500, seed: 42}
provider: {
	name:    "remote"
	backend: "qasm_simulator"
	url:     "http://localhost:8080"
}
poll: interval: "250ms"
draw: {enabled: true, file: "circuit.txt"}
`
	c, err := Parse("full.cue", []byte(src), Default())
	require.NoError(t, err)

	assert.Equal(t, Config{
		N:            32,
		Oracle:       17,
		Provider:     "remote",
		Backend:      "qasm_simulator",
		URL:          "http://localhost:8080",
		Shots:        500,
		Seed:         42,
		Draw:         true,
		DrawFile:     "circuit.txt",
		PollInterval: 250 * time.Millisecond,
	}, c)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":     `search: {qubits: 3}`,
		"size below two":    `search: n: 1`,
		"negative oracle":   `search: oracle: -1`,
		"zero shots":        `search: shots: 0`,
		"unknown provider":  `provider: name: "azure"`,
		"bad url":           `provider: url: "localhost"`,
		"bad duration":      `poll: interval: "soon"`,
		"zero interval":     `poll: interval: "0s"`,
		"negative timeout":  `poll: timeout: "-1s"`,
		"syntax error":      `search: {`,
		"non-concrete size": `search: n: int`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			base := Default()
			c, err := Parse("bad.cue", []byte(src), base)
			require.Error(t, err)

			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "bad.cue", loadErr.Path)
			if name != "bad duration" && name != "zero interval" && name != "negative timeout" {
				assert.Equal(t, base, c)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"), Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsearch.cue")
	require.NoError(t, os.WriteFile(path, []byte(`provider: backend: "statevector_simulator"`), 0o644))

	c, err := Load(path, Default())
	require.NoError(t, err)
	assert.Equal(t, "statevector_simulator", c.Backend)
}
