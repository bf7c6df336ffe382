package testutil

import (
	"strconv"
	"sync"
)

// FixedIDGenerator returns predetermined job IDs in order.
//
// Once the list is exhausted it keeps returning "<prefix>-<n>" so tests that
// only care about the first few IDs need not enumerate every one.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next ID.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.ids) {
		return g.ids[g.idx-1]
	}
	return "job-" + strconv.Itoa(g.idx)
}
