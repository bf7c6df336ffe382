package circuit

import (
	"fmt"
)

// Register names used by every search circuit.
const (
	ControlsName  = "c_qb"
	AncillaName   = "a_qb"
	TargetName    = "t_qb"
	ClassicalName = "c_b"
)

// Kind identifies an abstract gate operation.
type Kind string

const (
	// KindH is a uniform-superposition (Hadamard) operation on one qubit.
	KindH Kind = "h"

	// KindX is a bit flip on one qubit.
	KindX Kind = "x"

	// KindMCT flips Target when every control is 1, using Ancillas as workspace.
	KindMCT Kind = "mct"

	// KindMeasure maps Target onto the classical bit Clbit.
	KindMeasure Kind = "measure"
)

// Register is a named group of quantum or classical bits.
type Register struct {
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Classical bool   `json:"classical,omitempty"`
}

// Bit addresses one bit within a register.
type Bit struct {
	Register string `json:"reg"`
	Index    int    `json:"idx"`
}

func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}

// Op is a single abstract gate operation.
//
// Target is the acted-on qubit for every kind. Controls and Ancillas are only
// set for KindMCT, Clbit only for KindMeasure.
type Op struct {
	Kind     Kind  `json:"kind"`
	Target   Bit   `json:"target"`
	Controls []Bit `json:"controls,omitempty"`
	Ancillas []Bit `json:"ancillas,omitempty"`
	Clbit    *Bit  `json:"clbit,omitempty"`
}

// Spec is an immutable circuit specification.
type Spec struct {
	registers []Register
	ops       []Op
}

// Registers returns the declared registers in declaration order.
func (s *Spec) Registers() []Register {
	out := make([]Register, len(s.registers))
	copy(out, s.registers)
	return out
}

// Ops returns a copy of the operation sequence.
func (s *Spec) Ops() []Op {
	out := make([]Op, len(s.ops))
	for i, op := range s.ops {
		out[i] = op.clone()
	}
	return out
}

// Len returns the number of operations.
func (s *Spec) Len() int {
	return len(s.ops)
}

// Register returns the register with the given name.
func (s *Spec) Register(name string) (Register, bool) {
	for _, r := range s.registers {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// Width returns the number of control qubits (and classical result bits).
func (s *Spec) Width() int {
	r, _ := s.Register(ControlsName)
	return r.Size
}

// NumQubits returns the total number of quantum bits across all registers.
func (s *Spec) NumQubits() int {
	n := 0
	for _, r := range s.registers {
		if !r.Classical {
			n += r.Size
		}
	}
	return n
}

// NumClbits returns the total number of classical bits.
func (s *Spec) NumClbits() int {
	n := 0
	for _, r := range s.registers {
		if r.Classical {
			n += r.Size
		}
	}
	return n
}

// QubitIndex returns the flat index of a quantum bit. Registers are laid out
// back to back in declaration order.
func (s *Spec) QubitIndex(b Bit) (int, error) {
	return flatIndex(s.registers, b, false)
}

// ClbitIndex returns the flat index of a classical bit.
func (s *Spec) ClbitIndex(b Bit) (int, error) {
	return flatIndex(s.registers, b, true)
}

func flatIndex(regs []Register, b Bit, classical bool) (int, error) {
	offset := 0
	for _, r := range regs {
		if r.Classical != classical {
			continue
		}
		if r.Name == b.Register {
			if b.Index < 0 || b.Index >= r.Size {
				return 0, fmt.Errorf("bit %s out of range (size %d)", b, r.Size)
			}
			return offset + b.Index, nil
		}
		offset += r.Size
	}
	return 0, fmt.Errorf("unknown register %q", b.Register)
}

func (op Op) clone() Op {
	c := op
	if op.Controls != nil {
		c.Controls = append([]Bit(nil), op.Controls...)
	}
	if op.Ancillas != nil {
		c.Ancillas = append([]Bit(nil), op.Ancillas...)
	}
	if op.Clbit != nil {
		b := *op.Clbit
		c.Clbit = &b
	}
	return c
}
