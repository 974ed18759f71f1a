package stats

import "math"

// Quantile returns the p-quantile of sorted data using linear interpolation
// between closest ranks at position (n-1)·p. This is the definition used by
// most dataframe libraries for "describe" output; gonum's stat.Quantile only
// offers the empirical and CDF-based interpolations.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	position := float64(len(sorted)-1) * p
	lower := math.Floor(position)
	fraction := position - lower
	lowerIndex := int(lower)

	if lowerIndex+1 >= len(sorted) {
		return sorted[lowerIndex]
	}
	return sorted[lowerIndex] + fraction*(sorted[lowerIndex+1]-sorted[lowerIndex])
}
