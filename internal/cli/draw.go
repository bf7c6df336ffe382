package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/config"
	"github.com/roach88/qsearch/internal/grover"
)

// DrawOptions holds flags for the draw command.
type DrawOptions struct {
	*RootOptions
	N          int
	Oracle     int
	File       string
	DrawFormat string
}

type drawReport struct {
	N           int    `json:"n"`
	Oracle      int    `json:"oracle"`
	Qubits      int    `json:"qubits"`
	Iterations  int    `json:"iterations"`
	Ops         int    `json:"ops"`
	CircuitHash string `json:"circuit_hash"`
	Circuit     string `json:"circuit,omitempty"`
	File        string `json:"file,omitempty"`
}

// NewDrawCommand creates the draw command.
func NewDrawCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DrawOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Render the Grover circuit without executing it",
		Long: `Build the circuit for N and oracle and print it as text or OpenQASM 2.0.

Example:
  qsearch draw -n 8 -o 5
  qsearch draw -n 8 -o 5 --draw-format qasm --file grover.qasm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraw(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.N, "number", "n", config.DefaultN, "number of items in the search space")
	cmd.Flags().IntVarP(&opts.Oracle, "oracle", "o", config.DefaultOracle, "index of the marked item, in [0, N)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&opts.DrawFormat, "draw-format", "text", "drawing format (text|qasm)")

	return cmd
}

func runDraw(cmd *cobra.Command, opts *DrawOptions) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.DrawFormat != "text" && opts.DrawFormat != "qasm" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid draw format %q: must be text or qasm", opts.DrawFormat))
	}

	params, err := grover.Resolve(grover.Problem{N: opts.N, Oracle: opts.Oracle})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input", err)
	}
	spec, err := grover.Build(params)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input", err)
	}
	hash, err := circuit.Fingerprint(spec)
	if err != nil {
		return WrapExitError(ExitFailure, "fingerprint circuit", err)
	}
	drawing := render(spec, opts.DrawFormat)

	if opts.File != "" {
		if err := writeDrawing(opts.File, drawing); err != nil {
			return WrapExitError(ExitCommandError, "draw circuit", err)
		}
	}

	if out.JSON() {
		report := drawReport{
			N:           opts.N,
			Oracle:      opts.Oracle,
			Qubits:      params.Qubits(),
			Iterations:  params.Iterations,
			Ops:         spec.Len(),
			CircuitHash: hash,
			File:        opts.File,
		}
		if opts.File == "" {
			report.Circuit = drawing
		}
		return out.Success(report)
	}

	out.Line("Quantum circuit: %d qubits, %d iteration(s)", params.Qubits(), params.Iterations)
	if opts.File != "" {
		out.Line("Written to %s", opts.File)
		return nil
	}
	fmt.Fprint(out.Writer, drawing)
	return nil
}
