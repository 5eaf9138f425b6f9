package robustness

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean, zero for empty input
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation (n-1 denominator)
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// percentile returns the p-th percentile (p in [0,1]) using linear
// interpolation between the two nearest ranks
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// median returns the 50th percentile
func median(values []float64) float64 {
	return percentile(values, 0.5)
}

// confidenceInterval returns the two-sided percentile-method interval at the
// given confidence level, e.g. [2.5th, 97.5th] percentiles for 0.95
func confidenceInterval(values []float64, level float64) Interval {
	alpha := (1 - level) / 2
	return Interval{
		Low:  percentile(values, alpha),
		High: percentile(values, 1-alpha),
	}
}

// clip bounds v to [lo, hi]
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
