package circuit

import (
	"fmt"
	"strings"
)

// Text renders a Spec as one line per register declaration and operation.
// The output is intended for human inspection and golden comparison.
func Text(s *Spec) string {
	var sb strings.Builder
	for _, r := range s.registers {
		kind := "qreg"
		if r.Classical {
			kind = "creg"
		}
		fmt.Fprintf(&sb, "%s %s[%d]\n", kind, r.Name, r.Size)
	}
	for _, op := range s.ops {
		switch op.Kind {
		case KindMCT:
			fmt.Fprintf(&sb, "mct %s -> %s (%s)\n", joinBits(op.Controls), op.Target, joinBits(op.Ancillas))
		case KindMeasure:
			fmt.Fprintf(&sb, "measure %s -> %s\n", op.Target, op.Clbit)
		default:
			fmt.Fprintf(&sb, "%s %s\n", op.Kind, op.Target)
		}
	}
	return sb.String()
}

// QASM exports a Spec as OpenQASM 2.0.
//
// Multi-controlled flips become cx or ccx when they have one or two controls
// and mcx otherwise. The ancilla is declared but not referenced.
func QASM(s *Spec) string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	for _, r := range s.registers {
		kind := "qreg"
		if r.Classical {
			kind = "creg"
		}
		fmt.Fprintf(&sb, "%s %s[%d];\n", kind, r.Name, r.Size)
	}
	for _, op := range s.ops {
		switch op.Kind {
		case KindMCT:
			name := "mcx"
			switch len(op.Controls) {
			case 1:
				name = "cx"
			case 2:
				name = "ccx"
			}
			fmt.Fprintf(&sb, "%s %s,%s;\n", name, joinBits(op.Controls), op.Target)
		case KindMeasure:
			fmt.Fprintf(&sb, "measure %s -> %s;\n", op.Target, op.Clbit)
		default:
			fmt.Fprintf(&sb, "%s %s;\n", op.Kind, op.Target)
		}
	}
	return sb.String()
}

func joinBits(bits []Bit) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		parts[i] = b.String()
	}
	return strings.Join(parts, ",")
}
