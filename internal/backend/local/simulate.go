package local

import (
	"fmt"
	"math"

	"github.com/roach88/qsearch/internal/circuit"
)

// MaxQubits bounds the state vector at 2^MaxQubits amplitudes.
const MaxQubits = 22

// Distribution maps a classical register value to its probability.
type Distribution struct {
	Clbits int
	Probs  map[uint64]float64
}

// Simulate executes spec on a real-valued state vector and returns the
// distribution over the classical register.
//
// Only the abstract gate kinds of package circuit are supported, and every
// measurement must come after the last gate on its qubit. H, X and MCT keep
// amplitudes real, so no complex arithmetic is needed.
func Simulate(spec *circuit.Spec) (*Distribution, error) {
	n := spec.NumQubits()
	if n < 0 {
		return nil, fmt.Errorf("circuit reports %d qubits", n)
	}
	if n > MaxQubits {
		return nil, fmt.Errorf("circuit needs %d qubits, local simulator supports at most %d", n, MaxQubits)
	}

	state := make([]float64, 1<<n)
	state[0] = 1

	measured := make(map[int]int) // qubit -> clbit
	for i, op := range spec.Ops() {
		q, err := spec.QubitIndex(op.Target)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		if _, done := measured[q]; done && op.Kind != circuit.KindMeasure {
			return nil, fmt.Errorf("op %d: %s after measurement of %s is not supported", i, op.Kind, op.Target)
		}

		switch op.Kind {
		case circuit.KindH:
			applyH(state, q)
		case circuit.KindX:
			applyX(state, q)
		case circuit.KindMCT:
			var mask int
			for _, c := range op.Controls {
				ci, err := spec.QubitIndex(c)
				if err != nil {
					return nil, fmt.Errorf("op %d: %w", i, err)
				}
				mask |= 1 << ci
			}
			applyMCT(state, mask, q)
		case circuit.KindMeasure:
			cb, err := spec.ClbitIndex(*op.Clbit)
			if err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
			measured[q] = cb
		default:
			return nil, fmt.Errorf("op %d: unsupported gate %q", i, op.Kind)
		}
	}

	dist := &Distribution{Clbits: spec.NumClbits(), Probs: make(map[uint64]float64)}
	for idx, amp := range state {
		p := amp * amp
		if p == 0 {
			continue
		}
		var value uint64
		for q, cb := range measured {
			if idx&(1<<q) != 0 {
				value |= 1 << cb
			}
		}
		dist.Probs[value] += p
	}
	return dist, nil
}

func applyH(state []float64, q int) {
	bit := 1 << q
	for i := range state {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a, b := state[i], state[j]
		state[i] = (a + b) / math.Sqrt2
		state[j] = (a - b) / math.Sqrt2
	}
}

func applyX(state []float64, q int) {
	bit := 1 << q
	for i := range state {
		if i&bit == 0 {
			j := i | bit
			state[i], state[j] = state[j], state[i]
		}
	}
}

func applyMCT(state []float64, controls, q int) {
	bit := 1 << q
	for i := range state {
		if i&bit == 0 && i&controls == controls {
			j := i | bit
			state[i], state[j] = state[j], state[i]
		}
	}
}

// Bitstring formats a classical register value with the highest bit first.
func Bitstring(value uint64, clbits int) string {
	return fmt.Sprintf("%0*b", clbits, value)
}
