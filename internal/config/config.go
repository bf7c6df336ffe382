// Package config holds the settings for a qsearch run: defaults, an
// optional CUE file validated against an embedded schema, and the
// overrides applied by command-line flags.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Defaults mirror the reference tool's command-line defaults.
const (
	DefaultN            = 4
	DefaultOracle       = 3
	DefaultProvider     = "local"
	DefaultBackend      = "qasm_simulator"
	DefaultShots        = 10
	DefaultPollInterval = time.Second
)

// Config is the fully resolved configuration for one search.
type Config struct {
	N        int
	Oracle   int
	Provider string
	Backend  string
	Token    string
	URL      string
	Shots    int
	Seed     uint64

	Draw     bool
	DrawFile string

	PollInterval time.Duration
	Timeout      time.Duration // 0 means no deadline
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		N:            DefaultN,
		Oracle:       DefaultOracle,
		Provider:     DefaultProvider,
		Backend:      DefaultBackend,
		Shots:        DefaultShots,
		PollInterval: DefaultPollInterval,
	}
}

// LoadError reports a config file that could not be read, compiled or
// validated.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// file is the decoded shape of a config file. Pointer fields distinguish
// "absent" from the zero value.
type file struct {
	Search *struct {
		N      *int    `json:"n"`
		Oracle *int    `json:"oracle"`
		Shots  *int    `json:"shots"`
		Seed   *uint64 `json:"seed"`
	} `json:"search"`
	Provider *struct {
		Name    *string `json:"name"`
		Backend *string `json:"backend"`
		URL     *string `json:"url"`
	} `json:"provider"`
	Poll *struct {
		Interval *string `json:"interval"`
		Timeout  *string `json:"timeout"`
	} `json:"poll"`
	Draw *struct {
		Enabled *bool   `json:"enabled"`
		File    *string `json:"file"`
	} `json:"draw"`
}

// Load reads the CUE file at path and applies every value it sets on top
// of base. Unknown fields and out-of-range values are rejected.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, &LoadError{Path: path, Message: "read failed", Err: err}
	}
	return Parse(path, data, base)
}

// Parse is Load for in-memory content; name is used in error messages.
func Parse(name string, data []byte, base Config) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return base, &LoadError{Path: name, Message: "compiling embedded schema", Err: err}
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return base, &LoadError{Path: name, Message: "invalid CUE", Err: err}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return base, &LoadError{Path: name, Message: "schema validation failed", Err: err}
	}

	var f file
	if err := unified.Decode(&f); err != nil {
		return base, &LoadError{Path: name, Message: "decoding", Err: err}
	}
	return f.apply(name, base)
}

func (f file) apply(name string, c Config) (Config, error) {
	if s := f.Search; s != nil {
		setInt(&c.N, s.N)
		setInt(&c.Oracle, s.Oracle)
		setInt(&c.Shots, s.Shots)
		if s.Seed != nil {
			c.Seed = *s.Seed
		}
	}
	if p := f.Provider; p != nil {
		setString(&c.Provider, p.Name)
		setString(&c.Backend, p.Backend)
		setString(&c.URL, p.URL)
	}
	if p := f.Poll; p != nil {
		if err := setDuration(&c.PollInterval, p.Interval); err != nil {
			return c, &LoadError{Path: name, Message: "poll.interval", Err: err}
		}
		if err := setDuration(&c.Timeout, p.Timeout); err != nil {
			return c, &LoadError{Path: name, Message: "poll.timeout", Err: err}
		}
		if c.PollInterval <= 0 {
			return c, &LoadError{Path: name, Message: "poll.interval must be positive"}
		}
		if c.Timeout < 0 {
			return c, &LoadError{Path: name, Message: "poll.timeout must not be negative"}
		}
	}
	if d := f.Draw; d != nil {
		if d.Enabled != nil {
			c.Draw = *d.Enabled
		}
		setString(&c.DrawFile, d.File)
	}
	return c, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
