package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qsearch/internal/backend/local"
	"github.com/roach88/qsearch/internal/job"
)

// Backend kinds.
const (
	KindScripted = "scripted"
	KindLocal    = "local"
)

// Scenario is one end-to-end search with its expected outcome.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Search      SearchStep   `yaml:"search"`
	Backend     BackendSetup `yaml:"backend"`
	Expect      Expect       `yaml:"expect"`
}

// SearchStep is the request handed to grover.Search.
type SearchStep struct {
	N      int `yaml:"n"`
	Oracle int `yaml:"oracle"`
	Shots  int `yaml:"shots"`
}

// BackendSetup selects and configures the executing backend.
type BackendSetup struct {
	// Kind is "scripted" or "local".
	Kind string `yaml:"kind"`

	// Name selects the local simulator.
	Name string `yaml:"name,omitempty"`

	// Seed fixes local sampling.
	Seed uint64 `yaml:"seed,omitempty"`

	// Statuses is the scripted status sequence. Empty means DONE at once.
	Statuses []string `yaml:"statuses,omitempty"`

	// Counts is the scripted histogram.
	Counts map[string]int `yaml:"counts,omitempty"`

	// ErrorMessage is returned by a scripted backend for ERROR jobs.
	ErrorMessage string `yaml:"error_message,omitempty"`
}

// Expect lists the checks applied to a run. Nil fields are skipped.
type Expect struct {
	Answer    *int     `yaml:"answer,omitempty"`
	Bitstring string   `yaml:"bitstring,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
	Error     string   `yaml:"error,omitempty"`
	Message   string   `yaml:"message,omitempty"`
	Polls     *int     `yaml:"polls,omitempty"`
	Statuses  []string `yaml:"statuses,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so a misspelled key never silently disables a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Backend.Kind {
	case KindScripted:
		if s.Backend.Name != "" {
			return fmt.Errorf("backend.name is only valid for local backends")
		}
		for i, st := range s.Backend.Statuses {
			if _, err := job.ParseStatus(st); err != nil {
				return fmt.Errorf("backend.statuses[%d]: %w", i, err)
			}
		}
	case KindLocal:
		if !slices.Contains(local.Names(), s.Backend.Name) {
			return fmt.Errorf("backend.name %q is not a local simulator (available: %v)", s.Backend.Name, local.Names())
		}
		if len(s.Backend.Statuses) > 0 || s.Backend.Counts != nil || s.Backend.ErrorMessage != "" {
			return fmt.Errorf("statuses, counts and error_message are only valid for scripted backends")
		}
	case "":
		return fmt.Errorf("backend.kind is required")
	default:
		return fmt.Errorf("unknown backend kind %q", s.Backend.Kind)
	}

	for i, st := range s.Expect.Statuses {
		if _, err := job.ParseStatus(st); err != nil {
			return fmt.Errorf("expect.statuses[%d]: %w", i, err)
		}
	}
	if s.Expect.Polls != nil && *s.Expect.Polls < 0 {
		return fmt.Errorf("expect.polls must be non-negative")
	}
	if s.Expect.Error != "" && (s.Expect.Answer != nil || s.Expect.Bitstring != "" || s.Expect.Count != nil) {
		return fmt.Errorf("expect.error cannot be combined with an expected answer")
	}
	if s.Expect.Message != "" && s.Expect.Error == "" {
		return fmt.Errorf("expect.message requires expect.error")
	}
	return nil
}
