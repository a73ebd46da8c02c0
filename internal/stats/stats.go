// Package stats provides the discrete statistics used by the forecaster.
package stats

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

// Discrete summarizes a sample of numbers.
type Discrete struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Describe computes the five-number summary and mean of values. Quartiles are
// the medians of the lower and upper halves; for an odd count both halves
// include the middle element. It reports false for an empty sample.
func Describe(values []float64) (Discrete, bool) {
	if len(values) == 0 {
		return Discrete{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	half := n / 2
	lower := sorted[:n-half]
	upper := sorted[half:]

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return Discrete{
		Min:    sorted[0],
		Q1:     median(lower),
		Median: median(sorted),
		Q3:     median(upper),
		Max:    sorted[n-1],
		Mean:   sum / float64(n),
	}, true
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CumulativeProbability returns the fraction of values that are less than or
// equal to x under the ordering cmp.
func CumulativeProbability[T any](values []T, x T, compare func(a, b T) int) float64 {
	if len(values) == 0 {
		return 0
	}

	desc := slices.Clone(values)
	slices.SortFunc(desc, func(a, b T) int { return compare(b, a) })

	for i, v := range desc {
		if compare(v, x) <= 0 {
			return float64(len(desc)-i) / float64(len(desc))
		}
	}
	return 0
}

// CumulativeProbabilityOrdered is CumulativeProbability for naturally ordered types.
func CumulativeProbabilityOrdered[T cmp.Ordered](values []T, x T) float64 {
	return CumulativeProbability(values, x, cmp.Compare[T])
}

// Percentile picks the element at index round((n-1)*p) of an ascending
// slice. p is clamped to [0, 1]. It reports false for an empty slice.
func Percentile[T any](sorted []T, p float64) (T, bool) {
	var zero T
	if len(sorted) == 0 {
		return zero, false
	}
	p = math.Max(0, math.Min(1, p))
	idx := int(math.Round(float64(len(sorted)-1) * p))
	return sorted[idx], true
}

// RandomEntry returns a uniformly chosen element of values.
func RandomEntry[T any](rng *rand.Rand, values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	return values[rng.IntN(len(values))], true
}
