package grover

import (
	"fmt"

	"github.com/roach88/qsearch/internal/circuit"
)

// Build generates the Grover circuit for p.
//
// Gate order:
//
//	H on every control; X then H on the target (the |-> phase reference)
//	repeat p.Iterations times:
//	    oracle:    X(flips), MCT(controls -> target), X(flips)
//	    diffusion: H(controls), X(controls), MCT, X(controls), H(controls)
//	measure controls[i] -> c_b[i]
//
// Zero iterations is valid and leaves the uniform superposition untouched.
func Build(p Parameters) (*circuit.Spec, error) {
	if p.Width < 1 {
		return nil, NewInvalidSizeError(p.N)
	}
	b := circuit.NewBuilder(p.Width)
	controls := b.Controls()
	target := b.Target()
	ancillas := []circuit.Bit{b.Ancilla()}

	b.H(controls...)
	b.X(target)
	b.H(target)

	flips := OracleFlips(p.Oracle, controls)
	for i := 0; i < p.Iterations; i++ {
		b.X(flips...)
		b.MCT(controls, target, ancillas)
		b.X(flips...)

		b.H(controls...)
		b.X(controls...)
		b.MCT(controls, target, ancillas)
		b.X(controls...)
		b.H(controls...)
	}

	b.Measure(controls, b.Classical())

	spec, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build grover circuit: %w", err)
	}
	return spec, nil
}

// OracleFlips returns the control qubits that need a bit flip around the
// multi-controlled phase flip so that the oracle pattern maps onto all-ones.
//
// The oracle is written most-significant bit first and zipped against the
// controls in REVERSE declaration order, so the least-significant bit pairs
// with controls[0]. Qubits are returned in zip order. This orientation is
// what makes the measured bitstring (c_b[k-1] leftmost) read back as the
// oracle in binary.
func OracleFlips(oracle int, controls []circuit.Bit) []circuit.Bit {
	width := len(controls)
	binary := fmt.Sprintf("%0*b", width, oracle)
	var flips []circuit.Bit
	for i := 0; i < width && i < len(binary); i++ {
		if binary[i] == '0' {
			flips = append(flips, controls[width-1-i])
		}
	}
	return flips
}
