package timeline

import "sort"

// robustScale centers values on the median and divides by the interquartile
// range, which keeps one far-outlier timestamp from squashing the rest of
// the time axis. A zero IQR divides by one instead.
func robustScale(values []float64) []float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	median := percentile(sorted, 50)
	iqr := percentile(sorted, 75) - percentile(sorted, 25)
	if iqr == 0 {
		iqr = 1
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - median) / iqr
	}
	return out
}

// percentile computes the p-th percentile of sorted values with linear
// interpolation between ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
