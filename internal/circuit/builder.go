package circuit

import (
	"errors"
	"fmt"
)

// ErrNoControls is returned when a circuit would have an empty control register.
var ErrNoControls = errors.New("circuit needs at least one control qubit")

// Builder accumulates operations for a single Spec.
//
// Register layout is fixed at construction. The first invalid operation is
// remembered and reported by Build; later calls are ignored.
type Builder struct {
	registers []Register
	ops       []Op
	err       error
	built     bool
}

// NewBuilder creates a builder with `width` control qubits, one ancilla, one
// target and a `width`-bit classical register.
func NewBuilder(width int) *Builder {
	b := &Builder{
		registers: []Register{
			{Name: ControlsName, Size: width},
			{Name: AncillaName, Size: 1},
			{Name: TargetName, Size: 1},
			{Name: ClassicalName, Size: width, Classical: true},
		},
	}
	if width < 1 {
		b.err = ErrNoControls
	}
	return b
}

// Controls returns the control qubits in declaration order.
func (b *Builder) Controls() []Bit {
	return bits(ControlsName, b.registers[0].Size)
}

// Ancilla returns the ancilla qubit.
func (b *Builder) Ancilla() Bit {
	return Bit{Register: AncillaName}
}

// Target returns the target qubit.
func (b *Builder) Target() Bit {
	return Bit{Register: TargetName}
}

// Classical returns the classical result bits.
func (b *Builder) Classical() []Bit {
	return bits(ClassicalName, b.registers[3].Size)
}

// H applies a uniform-superposition operation to each qubit.
func (b *Builder) H(qubits ...Bit) *Builder {
	for _, q := range qubits {
		b.add(Op{Kind: KindH, Target: q})
	}
	return b
}

// X applies a bit flip to each qubit.
func (b *Builder) X(qubits ...Bit) *Builder {
	for _, q := range qubits {
		b.add(Op{Kind: KindX, Target: q})
	}
	return b
}

// MCT flips target when all controls are 1.
func (b *Builder) MCT(controls []Bit, target Bit, ancillas []Bit) *Builder {
	for _, c := range controls {
		if c == target {
			b.fail(fmt.Errorf("mct: target %s is also a control", target))
			return b
		}
	}
	b.add(Op{
		Kind:     KindMCT,
		Target:   target,
		Controls: append([]Bit(nil), controls...),
		Ancillas: append([]Bit(nil), ancillas...),
	})
	return b
}

// Measure maps each qubit onto the classical bit at the same position.
func (b *Builder) Measure(qubits, clbits []Bit) *Builder {
	if len(qubits) != len(clbits) {
		b.fail(fmt.Errorf("measure: %d qubits but %d classical bits", len(qubits), len(clbits)))
		return b
	}
	for i, q := range qubits {
		c := clbits[i]
		b.add(Op{Kind: KindMeasure, Target: q, Clbit: &c})
	}
	return b
}

// Build validates every operation and returns the finished Spec.
// A builder can only be built once.
func (b *Builder) Build() (*Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true
	return &Spec{registers: b.registers, ops: b.ops}, nil
}

func (b *Builder) add(op Op) {
	if b.err != nil || b.built {
		return
	}
	if err := validateOp(b.registers, op); err != nil {
		b.fail(fmt.Errorf("%s: %w", op.Kind, err))
		return
	}
	b.ops = append(b.ops, op)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func bits(reg string, n int) []Bit {
	out := make([]Bit, n)
	for i := range out {
		out[i] = Bit{Register: reg, Index: i}
	}
	return out
}
