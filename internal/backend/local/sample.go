package local

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/roach88/qsearch/internal/circuit"
)

func (d *Distribution) values() []uint64 {
	vals := make([]uint64, 0, len(d.Probs))
	for v := range d.Probs {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	return vals
}

// Sample draws `shots` outcomes from d.
func (d *Distribution) Sample(shots int, rng *rand.Rand) circuit.Histogram {
	vals := d.values()
	cum := make([]float64, len(vals))
	total := 0.0
	for i, v := range vals {
		total += d.Probs[v]
		cum[i] = total
	}

	hist := make(circuit.Histogram)
	if len(vals) == 0 {
		return hist
	}
	for s := 0; s < shots; s++ {
		r := rng.Float64() * total
		i := sort.SearchFloat64s(cum, r)
		if i >= len(vals) {
			i = len(vals) - 1
		}
		hist[Bitstring(vals[i], d.Clbits)]++
	}
	return hist
}

// Expected returns the deterministic counts closest to shots*p that still sum
// to shots (largest remainder; ties go to the smaller register value).
func (d *Distribution) Expected(shots int) circuit.Histogram {
	vals := d.values()
	type share struct {
		value uint64
		count int
		frac  float64
	}
	shares := make([]share, len(vals))
	assigned := 0
	for i, v := range vals {
		exact := d.Probs[v] * float64(shots)
		whole := math.Floor(exact)
		shares[i] = share{value: v, count: int(whole), frac: exact - whole}
		assigned += int(whole)
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return shares[order[a]].frac > shares[order[b]].frac })
	for k := 0; assigned < shots && k < len(order); k++ {
		shares[order[k]].count++
		assigned++
	}

	hist := make(circuit.Histogram)
	for _, s := range shares {
		if s.count > 0 {
			hist[Bitstring(s.value, d.Clbits)] = s.count
		}
	}
	return hist
}
