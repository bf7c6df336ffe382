package circuit

import (
	"encoding/json"
	"fmt"
)

type specJSON struct {
	Registers []Register `json:"registers"`
	Ops       []Op       `json:"ops"`
}

// MarshalJSON encodes the Spec for transport to a remote backend.
func (s *Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(specJSON{Registers: s.registers, Ops: s.ops})
}

// UnmarshalJSON decodes and validates a Spec.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw specJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := validateRegisters(raw.Registers); err != nil {
		return fmt.Errorf("circuit: %w", err)
	}
	for i, op := range raw.Ops {
		if err := validateOp(raw.Registers, op); err != nil {
			return fmt.Errorf("circuit: op %d (%s): %w", i, op.Kind, err)
		}
	}
	s.registers = raw.Registers
	s.ops = raw.Ops
	return nil
}

// MaxRegisterSize bounds a decoded register so qubit totals cannot overflow.
const MaxRegisterSize = 1 << 16

func validateRegisters(regs []Register) error {
	if len(regs) == 0 {
		return fmt.Errorf("no registers")
	}
	seen := make(map[string]bool, len(regs))
	for i, r := range regs {
		if r.Name == "" {
			return fmt.Errorf("register %d has no name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate register %q", r.Name)
		}
		seen[r.Name] = true
		if r.Size < 0 || r.Size > MaxRegisterSize {
			return fmt.Errorf("register %q size %d outside [0, %d]", r.Name, r.Size, MaxRegisterSize)
		}
	}
	return nil
}

func validateOp(regs []Register, op Op) error {
	switch op.Kind {
	case KindH, KindX, KindMCT, KindMeasure:
	default:
		return fmt.Errorf("unknown gate kind %q", op.Kind)
	}
	if _, err := flatIndex(regs, op.Target, false); err != nil {
		return err
	}
	for _, c := range op.Controls {
		if _, err := flatIndex(regs, c, false); err != nil {
			return err
		}
		if c == op.Target {
			return fmt.Errorf("target %s is also a control", op.Target)
		}
	}
	for _, a := range op.Ancillas {
		if _, err := flatIndex(regs, a, false); err != nil {
			return err
		}
	}
	if op.Kind == KindMeasure {
		if op.Clbit == nil {
			return fmt.Errorf("measure without classical bit")
		}
		if _, err := flatIndex(regs, *op.Clbit, true); err != nil {
			return err
		}
	}
	return nil
}
