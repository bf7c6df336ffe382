package grover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsearch/internal/circuit"
)

func TestInterpret_Concentrated(t *testing.T) {
	a, err := Interpret(circuit.Histogram{"11": 100})
	require.NoError(t, err)

	assert.Equal(t, Answer{Bitstring: "11", Count: 100, Value: 3}, a)
	assert.Equal(t, "Answer: 3, State: '11', 100 times", a.String())
}

func TestInterpret_BigEndian(t *testing.T) {
	a, err := Interpret(circuit.Histogram{"0001": 2, "1000": 9, "0100": 1})
	require.NoError(t, err)
	assert.Equal(t, 8, a.Value)
}

func TestInterpret_TieBreakIsDeterministic(t *testing.T) {
	h := circuit.Histogram{"10": 40, "01": 40, "00": 20}
	for i := 0; i < 50; i++ {
		a, err := Interpret(h)
		require.NoError(t, err)
		assert.Equal(t, "01", a.Bitstring, "smallest bitstring wins a tie")
	}
}

func TestInterpret_StrictlyGreater(t *testing.T) {
	a, err := Interpret(circuit.Histogram{"00": 5, "11": 6, "10": 6})
	require.NoError(t, err)
	assert.Equal(t, "10", a.Bitstring)
	assert.Equal(t, 6, a.Count)
}

func TestInterpret_Empty(t *testing.T) {
	for _, h := range []circuit.Histogram{nil, {}, {"00": 0, "01": 0}} {
		_, err := Interpret(h)
		require.Error(t, err)
		assert.True(t, IsEmptyHistogram(err))
		assert.False(t, IsInputError(err))
	}
}

func TestInterpret_MalformedBitstring(t *testing.T) {
	_, err := Interpret(circuit.Histogram{"1x": 3})
	require.Error(t, err)
	assert.False(t, IsEmptyHistogram(err))
}
