package circuit

import "sort"

// Histogram maps measured bitstrings to observation counts.
//
// Bitstrings are big-endian: the leftmost character is the highest classical
// bit (c_b[width-1]), the rightmost is c_b[0].
type Histogram map[string]int

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Keys returns the bitstrings in ascending order.
func (h Histogram) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (h Histogram) Clone() Histogram {
	out := make(Histogram, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
