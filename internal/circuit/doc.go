// Package circuit defines the abstract gate model handed to execution backends.
//
// A Spec is an ordered list of operations over named registers. It has no
// dependency on any execution technology: backends interpret the four gate
// kinds themselves (or translate them, see QASM).
//
// Register layout follows the flat qubit order used by every backend:
//
//	c_qb[0..k-1]  control qubits
//	a_qb[0]       ancilla (workspace for multi-controlled operations)
//	t_qb[0]       target (phase kickback)
//	c_b[0..k-1]   classical result register
//
// A Spec is immutable once Build returns. Accessors hand out copies.
package circuit
