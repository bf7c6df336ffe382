package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/config"
	"github.com/roach88/qsearch/internal/grover"
	"github.com/roach88/qsearch/internal/job"
	"github.com/roach88/qsearch/internal/provider"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions

	N            int
	Oracle       int
	Provider     string
	Backend      string
	Token        string
	URL          string
	Shots        int
	Seed         uint64
	Draw         bool
	DrawFile     string
	DrawFormat   string
	ConfigPath   string
	Credentials  string
	PollInterval time.Duration
	Timeout      time.Duration
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run Grover's search for a marked item",
		Long: `Build the Grover circuit for a search space of N items with the given
oracle, execute it on the selected provider/backend and report the most
frequently measured state.

Values come from built-in defaults, then --config, then flags.

Example:
  qsearch search -n 16 -o 9 -s 100
  qsearch search -n 8 -o 5 -p remote -b qasm_simulator -t $TOKEN
  qsearch search --config search.cue -d --draw-file circuit.qasm --draw-format qasm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.N, "number", "n", def.N, "number of items in the search space")
	f.IntVarP(&opts.Oracle, "oracle", "o", def.Oracle, "index of the marked item, in [0, N)")
	f.StringVarP(&opts.Provider, "provider", "p", def.Provider, "provider: local (aer) or remote (ibmq)")
	f.StringVarP(&opts.Backend, "backend", "b", def.Backend, "backend name")
	f.StringVarP(&opts.Token, "token", "t", "", "remote provider token (default: stored account)")
	f.StringVar(&opts.URL, "url", "", "remote service URL (default: stored account or "+provider.DefaultRemoteURL+")")
	f.IntVarP(&opts.Shots, "shots", "s", def.Shots, "number of circuit executions")
	f.Uint64Var(&opts.Seed, "seed", 0, "sampling seed for the local qasm simulator (0 = random)")
	f.BoolVarP(&opts.Draw, "draw", "d", false, "draw the circuit")
	f.StringVar(&opts.DrawFile, "draw-file", "", "write the drawing to this file instead of stdout (implies --draw)")
	f.StringVar(&opts.DrawFormat, "draw-format", "text", "drawing format (text|qasm)")
	f.StringVar(&opts.ConfigPath, "config", "", "CUE config file")
	f.StringVar(&opts.Credentials, "credentials", "", "account file (default: "+credentialsHint()+")")
	f.DurationVar(&opts.PollInterval, "poll-interval", def.PollInterval, "wait between job status checks")
	f.DurationVar(&opts.Timeout, "timeout", 0, "give up waiting after this long (0 = never)")

	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func (o *SearchOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath, cfg); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("number") {
		cfg.N = o.N
	}
	if f.Changed("oracle") {
		cfg.Oracle = o.Oracle
	}
	if f.Changed("provider") {
		cfg.Provider = o.Provider
	}
	if f.Changed("backend") {
		cfg.Backend = o.Backend
	}
	if f.Changed("url") {
		cfg.URL = o.URL
	}
	if f.Changed("shots") {
		cfg.Shots = o.Shots
	}
	if f.Changed("seed") {
		cfg.Seed = o.Seed
	}
	if f.Changed("draw") {
		cfg.Draw = o.Draw
	}
	if f.Changed("draw-file") {
		cfg.DrawFile = o.DrawFile
	}
	if f.Changed("poll-interval") {
		cfg.PollInterval = o.PollInterval
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	cfg.Token = o.Token

	if cfg.DrawFile != "" {
		cfg.Draw = true
	}
	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

type answerReport struct {
	Value     int    `json:"value"`
	Bitstring string `json:"bitstring"`
	Count     int    `json:"count"`
}

type searchReport struct {
	N           int               `json:"n"`
	Oracle      int               `json:"oracle"`
	Provider    string            `json:"provider"`
	Backend     string            `json:"backend"`
	Shots       int               `json:"shots"`
	Qubits      int               `json:"qubits"`
	Iterations  int               `json:"iterations"`
	CircuitHash string            `json:"circuit_hash"`
	Circuit     string            `json:"circuit,omitempty"`
	Polls       int               `json:"polls"`
	Counts      circuit.Histogram `json:"counts"`
	Answer      answerReport      `json:"answer"`
}

func runSearch(cmd *cobra.Command, opts *SearchOptions) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	providerName, err := provider.Canonical(cfg.Provider)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.DrawFormat != "text" && opts.DrawFormat != "qasm" {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid draw format %q: must be text or qasm", opts.DrawFormat))
	}

	plan, err := grover.Prepare(grover.Request{
		Problem: grover.Problem{N: cfg.N, Oracle: cfg.Oracle},
		Shots:   cfg.Shots,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input", err)
	}
	hash, err := circuit.Fingerprint(plan.Spec)
	if err != nil {
		return WrapExitError(ExitFailure, "fingerprint circuit", err)
	}

	out.Line("Grover's Search Algorithm Tool v.%s", Version)
	out.Line("Params: N = %d, Oracle = %d, Backend = %s/%s, Shots = %d",
		cfg.N, cfg.Oracle, providerName, cfg.Backend, cfg.Shots)
	out.Line("Quantum circuit: %d qubits, %d iteration(s)", plan.Params.Qubits(), plan.Params.Iterations)
	out.Line("Building...")
	logger.Debug("circuit built", "ops", plan.Spec.Len(), "hash", hash)

	report := searchReport{
		N:           cfg.N,
		Oracle:      cfg.Oracle,
		Provider:    providerName,
		Backend:     cfg.Backend,
		Shots:       cfg.Shots,
		Qubits:      plan.Params.Qubits(),
		Iterations:  plan.Params.Iterations,
		CircuitHash: hash,
	}

	if cfg.Draw {
		drawing := render(plan.Spec, opts.DrawFormat)
		switch {
		case cfg.DrawFile != "":
			if err := writeDrawing(cfg.DrawFile, drawing); err != nil {
				return WrapExitError(ExitCommandError, "draw circuit", err)
			}
			out.VerboseLog("circuit written to %s", cfg.DrawFile)
		case out.JSON():
			report.Circuit = drawing
		default:
			fmt.Fprint(out.Writer, drawing)
		}
	}

	p, err := provider.Resolve(provider.Options{
		Name:            providerName,
		Token:           cfg.Token,
		URL:             cfg.URL,
		CredentialsPath: opts.Credentials,
		Seed:            cfg.Seed,
		Logger:          logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve provider", err)
	}
	backend, err := p.Backend(cfg.Backend)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve backend", err)
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	ctrl := job.NewController(
		job.WithInterval(cfg.PollInterval),
		job.WithTimeout(cfg.Timeout),
		job.WithLogger(logger),
		job.WithPollHook(func(poll job.Poll) {
			report.Polls = poll.Count + 1
			out.Line("(%d) %s", poll.Count, poll.Status)
		}),
	)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	out.Line("Executing...")
	res, err := grover.Execute(ctx, plan, backend, ctrl)
	if err != nil {
		return WrapExitError(ExitFailure, "search failed", err)
	}

	report.Counts = res.Histogram
	report.Answer = answerReport{
		Value:     res.Answer.Value,
		Bitstring: res.Answer.Bitstring,
		Count:     res.Answer.Count,
	}
	if out.JSON() {
		return out.Success(report)
	}
	return out.Success(res.Answer)
}

func render(spec *circuit.Spec, format string) string {
	if format == "qasm" {
		return circuit.QASM(spec)
	}
	return circuit.Text(spec)
}

// writeDrawing replaces path atomically so a reader never sees a partial
// drawing.
func writeDrawing(path, drawing string) error {
	return atomic.WriteFile(path, strings.NewReader(drawing))
}

func credentialsHint() string {
	path, err := provider.DefaultCredentialsPath()
	if err != nil {
		return "$XDG_CONFIG_HOME/qsearch/" + provider.CredentialsFile
	}
	return path
}
