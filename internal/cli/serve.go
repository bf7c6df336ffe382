package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qsearch/internal/server"
	"github.com/roach88/qsearch/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Token    string
	Seed     uint64
	Idle     time.Duration

	// ready, when set, receives the bound address once listening (tests).
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the remote job service",
		Long: `Serve the remote job protocol backed by a SQLite job queue and execute
queued circuits on the local simulators.

The database is created if it doesn't exist. Jobs left running by a previous
process are queued again on startup.

Example:
  qsearch serve --db ./jobs.db --token s3cret
  qsearch serve --addr 127.0.0.1:9000 --db /tmp/jobs.db --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "bearer token clients must present (empty = no auth)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "sampling seed for the qasm simulator (0 = random)")
	cmd.Flags().DurationVar(&opts.Idle, "idle-interval", server.DefaultIdleInterval, "worker wait when the queue is empty")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.Token == "" {
		logger.Warn("no --token given, the API accepts any client")
	}
	srv, err := server.New(st,
		server.WithToken(opts.Token),
		server.WithLogger(logger),
		server.WithSeed(opts.Seed),
		server.WithIdleInterval(opts.Idle),
	)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create server", err)
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	if opts.ready != nil {
		opts.ready <- ln.Addr().String()
	}

	if err := srv.Serve(ctx, ln); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
