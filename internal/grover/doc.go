// Package grover implements the search orchestration pipeline:
//
//	Resolve  -> Parameters   (pure: sizes from N and oracle)
//	Build    -> circuit.Spec (pure: oracle + diffusion iterates)
//	job.Controller.Run       (the only I/O: submit and poll a backend)
//	Interpret -> Answer      (pure: most frequent bitstring)
//
// Bit orientation matters. The oracle is encoded most-significant bit first
// against the reversed control register, and the measured bitstring is read
// big-endian. Changing either side breaks amplification of the marked state.
package grover
