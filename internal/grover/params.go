package grover

import (
	"math"
	"math/bits"
)

// Problem is a search over N items for the one at index Oracle.
type Problem struct {
	N      int
	Oracle int
}

// Parameters are the circuit sizes derived from a Problem.
type Parameters struct {
	Problem

	// Width is ceil(log2 N): the fewest control qubits able to index N items.
	Width int

	// Iterations is floor(pi/4 * log2 N): the number of Grover iterates.
	Iterations int
}

// Qubits returns the total qubit count: controls, ancilla and target.
func (p Parameters) Qubits() int {
	return p.Width + 2
}

// Derive computes the register width and iteration count for n items.
//
// Derive never fails. n = 1 yields width 0 and zero iterations, which Resolve
// rejects; n <= 0 is treated the same way. When n is not a power of two the
// width rounds up, so bitstrings for indices >= n remain in the measurement
// space and can never be marked.
func Derive(n int) (width, iterations int) {
	if n < 2 {
		return 0, 0
	}
	width = bits.Len(uint(n - 1))
	iterations = int(math.Pi / 4 * math.Log2(float64(n)))
	return width, iterations
}

// Resolve validates p and derives its circuit Parameters.
//
// The oracle is checked first: an oracle outside [0, N) is an
// INVALID_ORACLE error even when N itself is too small.
func Resolve(p Problem) (Parameters, error) {
	if p.Oracle < 0 || p.Oracle >= p.N {
		return Parameters{}, NewInvalidOracleError(p.N, p.Oracle)
	}
	if p.N < 2 {
		return Parameters{}, NewInvalidSizeError(p.N)
	}
	width, iterations := Derive(p.N)
	return Parameters{Problem: p, Width: width, Iterations: iterations}, nil
}
