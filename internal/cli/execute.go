package cli

import (
	"context"
	"errors"
	"io"
)

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr, or as a JSON document on stdout when
// --format json is in effect.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	// Commands wrap their own failures; anything else is cobra rejecting
	// the command line.
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		err = WrapExitError(ExitCommandError, "usage", err)
	}

	format, _ := cmd.PersistentFlags().GetString("format")
	out := &OutputFormatter{Format: format, Writer: stderr}
	if out.JSON() {
		out.Writer = stdout
	}
	_ = out.Error(ErrorCode(err), err.Error(), nil)

	return GetExitCode(err)
}
