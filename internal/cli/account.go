package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qsearch/internal/provider"
)

// AccountOptions holds flags shared by the account subcommands.
type AccountOptions struct {
	*RootOptions
	Credentials string
	Token       string
	URL         string
}

type accountReport struct {
	Path  string `json:"path"`
	Token string `json:"token"`
	URL   string `json:"url,omitempty"`
}

// NewAccountCommand creates the account command and its subcommands.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AccountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the stored remote account",
	}
	cmd.PersistentFlags().StringVar(&opts.Credentials, "credentials", "", "account file (default: "+credentialsHint()+")")

	save := &cobra.Command{
		Use:   "save",
		Short: "Store a remote token (and optional service URL)",
		Long: `Store the token used by the remote provider when --token is not given.

The file is replaced atomically and readable by the owner only.

Example:
  qsearch account save --token s3cret --url http://jobs.internal:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountSave(cmd, opts)
		},
	}
	save.Flags().StringVarP(&opts.Token, "token", "t", "", "remote token (required)")
	save.Flags().StringVar(&opts.URL, "url", "", "remote service URL")
	_ = save.MarkFlagRequired("token")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the stored account with the token redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountShow(cmd, opts)
		},
	}

	cmd.AddCommand(save, show)
	return cmd
}

func (o *AccountOptions) path() (string, error) {
	if o.Credentials != "" {
		return o.Credentials, nil
	}
	return provider.DefaultCredentialsPath()
}

func runAccountSave(cmd *cobra.Command, opts *AccountOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	path, err := opts.path()
	if err != nil {
		return WrapExitError(ExitCommandError, "locate account file", err)
	}
	if err := provider.SaveAccount(path, provider.Account{Token: opts.Token, URL: opts.URL}); err != nil {
		return WrapExitError(ExitFailure, "save account", err)
	}

	if out.JSON() {
		return out.Success(accountReport{Path: path, Token: provider.Redact(opts.Token), URL: opts.URL})
	}
	out.Line("Account saved to %s", path)
	return nil
}

func runAccountShow(cmd *cobra.Command, opts *AccountOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	path, err := opts.path()
	if err != nil {
		return WrapExitError(ExitCommandError, "locate account file", err)
	}
	acct, err := provider.LoadAccount(path)
	if errors.Is(err, os.ErrNotExist) {
		return WrapExitError(ExitCommandError, "no stored account", provider.NewMissingTokenError(path))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "load account", err)
	}

	report := accountReport{Path: path, Token: provider.Redact(acct.Token), URL: acct.URL}
	if out.JSON() {
		return out.Success(report)
	}
	out.Line("Path:  %s", report.Path)
	out.Line("Token: %s", report.Token)
	if report.URL != "" {
		out.Line("URL:   %s", report.URL)
	}
	return nil
}
