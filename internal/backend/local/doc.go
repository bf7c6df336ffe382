// Package local provides the in-process backend used by the local provider.
//
// It executes the abstract gates of package circuit on a state vector and
// either samples shots (qasm_simulator) or returns expected counts
// (statevector_simulator). It needs no credentials.
package local
