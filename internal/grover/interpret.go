package grover

import (
	"fmt"
	"strconv"

	"github.com/roach88/qsearch/internal/circuit"
)

// Answer is the most probable search result.
type Answer struct {
	Bitstring string
	Count     int
	Value     int
}

func (a Answer) String() string {
	return fmt.Sprintf("Answer: %d, State: '%s', %d times", a.Value, a.Bitstring, a.Count)
}

// Interpret picks the bitstring with the strictly greatest count.
//
// Keys are visited in ascending bitstring order, so on a tie the smallest
// bitstring wins. The bitstring is read as a big-endian unsigned integer,
// matching the c_b register layout.
func Interpret(h circuit.Histogram) (Answer, error) {
	var best Answer
	for _, k := range h.Keys() {
		if c := h[k]; c > best.Count {
			best = Answer{Bitstring: k, Count: c}
		}
	}
	if best.Count == 0 {
		return Answer{}, NewEmptyHistogramError(len(h))
	}
	v, err := strconv.ParseUint(best.Bitstring, 2, 63)
	if err != nil {
		return Answer{}, fmt.Errorf("interpret bitstring %q: %w", best.Bitstring, err)
	}
	best.Value = int(v)
	return best, nil
}
