package provider

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/roach88/qsearch/internal/backend/local"
	"github.com/roach88/qsearch/internal/backend/remote"
	"github.com/roach88/qsearch/internal/job"
)

// Provider names. "aer" and "ibmq" are accepted as aliases.
const (
	NameLocal  = "local"
	NameRemote = "remote"
)

// DefaultRemoteURL is used when neither the caller nor the stored account
// names a service.
const DefaultRemoteURL = "http://localhost:8080"

var aliases = map[string]string{
	"local":  NameLocal,
	"aer":    NameLocal,
	"remote": NameRemote,
	"ibmq":   NameRemote,
}

// Canonical maps a user-supplied provider name to NameLocal or NameRemote.
func Canonical(name string) (string, error) {
	if c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return "", NewUnknownProviderError(name)
}

// Provider creates backends by name.
type Provider interface {
	Name() string
	Backend(name string) (job.Backend, error)
}

// Local serves the in-process simulators.
type Local struct {
	cfg local.Config
}

// NewLocal creates the local provider. cfg is passed to every backend.
func NewLocal(cfg local.Config) *Local {
	return &Local{cfg: cfg}
}

// Name implements Provider.
func (*Local) Name() string { return NameLocal }

// Backend implements Provider. The returned *local.Backend should be closed
// after use.
func (l *Local) Backend(name string) (job.Backend, error) {
	b, err := local.New(name, l.cfg)
	if err != nil {
		return nil, NewUnknownBackendError(NameLocal, name, err)
	}
	return b, nil
}

// Remote serves backends of a qsearch job service.
type Remote struct {
	cfg remote.Config
}

// NewRemote creates the remote provider. cfg.Token must already be resolved.
func NewRemote(cfg remote.Config) (*Remote, error) {
	if cfg.Token == "" {
		return nil, NewMissingTokenError("")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultRemoteURL
	}
	return &Remote{cfg: cfg}, nil
}

// Name implements Provider.
func (*Remote) Name() string { return NameRemote }

// URL returns the service address.
func (r *Remote) URL() string { return r.cfg.URL }

// Backend implements Provider. Backend names are checked by the service on
// submission.
func (r *Remote) Backend(name string) (job.Backend, error) {
	b, err := remote.New(name, r.cfg)
	if err != nil {
		return nil, NewUnknownBackendError(NameRemote, name, err)
	}
	return b, nil
}

// Options selects and authenticates a provider.
type Options struct {
	Name  string
	Token string
	URL   string

	// CredentialsPath defaults to DefaultCredentialsPath().
	CredentialsPath string

	// Seed is passed to local backends.
	Seed uint64

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Resolve builds the provider named in opts. Token resolution happens here,
// so a missing token fails before any circuit is submitted.
func Resolve(opts Options) (Provider, error) {
	name, err := Canonical(opts.Name)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if name == NameLocal {
		return NewLocal(local.Config{Seed: opts.Seed, Logger: logger}), nil
	}

	path := opts.CredentialsPath
	if path == "" {
		if path, err = DefaultCredentialsPath(); err != nil {
			return nil, err
		}
	}
	token, storedURL, err := ResolveToken(opts.Token, path)
	if err != nil {
		return nil, err
	}
	url := opts.URL
	if url == "" {
		url = storedURL
	}
	logger.Debug("resolved remote account", "url", url, "token", Redact(token))

	return NewRemote(remote.Config{
		URL:        url,
		Token:      token,
		HTTPClient: opts.HTTPClient,
		Logger:     logger,
	})
}
