package local

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/grover"
)

func groverSpec(t *testing.T, n, oracle int) *circuit.Spec {
	t.Helper()
	params, err := grover.Resolve(grover.Problem{N: n, Oracle: oracle})
	require.NoError(t, err)
	spec, err := grover.Build(params)
	require.NoError(t, err)
	return spec
}

func TestSimulate_UniformSuperposition(t *testing.T) {
	b := circuit.NewBuilder(2)
	b.H(b.Controls()...)
	b.Measure(b.Controls(), b.Classical())
	spec, err := b.Build()
	require.NoError(t, err)

	dist, err := Simulate(spec)
	require.NoError(t, err)

	require.Len(t, dist.Probs, 4)
	for v, p := range dist.Probs {
		assert.InDelta(t, 0.25, p, 1e-12, "value %d", v)
	}
}

func TestSimulate_XSetsMeasuredBit(t *testing.T) {
	b := circuit.NewBuilder(3)
	c := b.Controls()
	b.X(c[0], c[2])
	b.Measure(c, b.Classical())
	spec, err := b.Build()
	require.NoError(t, err)

	dist, err := Simulate(spec)
	require.NoError(t, err)

	require.Len(t, dist.Probs, 1)
	assert.InDelta(t, 1.0, dist.Probs[0b101], 1e-12)
	assert.Equal(t, "101", Bitstring(0b101, dist.Clbits))
}

func TestSimulate_GroverFourItemsIsExact(t *testing.T) {
	for oracle := 0; oracle < 4; oracle++ {
		dist, err := Simulate(groverSpec(t, 4, oracle))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, dist.Probs[uint64(oracle)], 1e-9, "oracle %d", oracle)
	}
}

func TestSimulate_GroverEightItems(t *testing.T) {
	dist, err := Simulate(groverSpec(t, 8, 5))
	require.NoError(t, err)

	// sin^2(5 * asin(1/sqrt(8))) after two iterations
	assert.InDelta(t, 0.9453, dist.Probs[5], 1e-3)
	for v, p := range dist.Probs {
		if v != 5 {
			assert.Less(t, p, dist.Probs[5])
		}
	}
}

func TestSimulate_NonPowerOfTwo(t *testing.T) {
	// N=5 rounds up to 3 control qubits; 5..7 stay measurable.
	dist, err := Simulate(groverSpec(t, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, dist.Clbits)

	best, bestP := uint64(0), 0.0
	for v, p := range dist.Probs {
		if p > bestP {
			best, bestP = v, p
		}
	}
	assert.Equal(t, uint64(2), best)
}

func TestSimulate_TooManyQubits(t *testing.T) {
	b := circuit.NewBuilder(MaxQubits)
	b.Measure(b.Controls(), b.Classical())
	spec, err := b.Build()
	require.NoError(t, err)

	_, err = Simulate(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most")
}

func TestDistribution_ExpectedSumsToShots(t *testing.T) {
	dist := &Distribution{Clbits: 2, Probs: map[uint64]float64{0: 1.0 / 3, 1: 1.0 / 3, 2: 1.0 / 3}}

	hist := dist.Expected(10)

	assert.Equal(t, 10, hist.Total())
	assert.Equal(t, circuit.Histogram{"00": 4, "01": 3, "10": 3}, hist)
}

func TestDistribution_SampleIsSeeded(t *testing.T) {
	dist := &Distribution{Clbits: 1, Probs: map[uint64]float64{0: 0.5, 1: 0.5}}

	h1 := dist.Sample(200, rand.New(rand.NewPCG(7, 11)))
	h2 := dist.Sample(200, rand.New(rand.NewPCG(7, 11)))

	assert.Equal(t, h1, h2)
	assert.Equal(t, 200, h1.Total())
}
