package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/roach88/qsearch/internal/circuit"
)

// createTestStore opens a store in a temp dir with a mock clock.
func createTestStore(t *testing.T) (*Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(mock))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mock
}

// createTestSpec builds a two-control circuit with a measurement.
func createTestSpec(t *testing.T) *circuit.Spec {
	t.Helper()
	b := circuit.NewBuilder(2)
	b.H(b.Controls()...)
	b.MCT(b.Controls(), b.Target(), []circuit.Bit{b.Ancilla()})
	b.Measure(b.Controls(), b.Classical())
	spec, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return spec
}
