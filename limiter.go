package analogy

// sanitizeK ensures k is within valid bounds [1, maxResults].
//
// If k is <= 0 or exceeds maxResults, it returns maxResults.
//
// Usage:
//
//	k := sanitizeK(requestedK, len(entries))
//	return entries[:k]
func sanitizeK(k, maxResults int) int {
	if k <= 0 || k > maxResults {
		return maxResults
	}
	return k
}

// Top returns the k most influential entries. A k outside [1, Len()]
// returns every entry.
func (a *AnalogicalSet) Top(k int) []AnalogicalEntry {
	return a.Entries[:sanitizeK(k, len(a.Entries))]
}

// Autocut returns the entries before the cutoff-th extremum of the effect
// curve, which separates the exemplars that drive the prediction from the
// long tail. A cutoff of -1 returns every entry.
//
// Usage:
//
//	drivers := set.Autocut(1)
func (a *AnalogicalSet) Autocut(cutoff int) []AnalogicalEntry {
	if cutoff == -1 || len(a.Entries) == 0 {
		return a.Entries
	}
	effects := make([]float64, len(a.Entries))
	for i, e := range a.Entries {
		effects[i], _ = e.Effect.Float64()
	}
	return a.Entries[:Autocut(effects, cutoff)]
}

// Autocut determines the cutoff point of a sorted score distribution.
//
// It compares the normalized scores against a straight line from the first
// to the last score and returns the index before the cutOff-th local maximum
// of the difference.
//
// Parameters:
//   - yValues: scores in the order they are listed
//   - cutOff: number of extrema to encounter before cutting
//
// Returns the index at which to cut the results.
func Autocut(yValues []float64, cutOff int) int {
	if len(yValues) <= 1 {
		return len(yValues)
	}

	span := yValues[len(yValues)-1] - yValues[0]
	if span == 0 {
		return len(yValues)
	}

	diff := make([]float64, len(yValues))
	step := 1. / (float64(len(yValues)) - 1.)
	for i := range yValues {
		xValue := float64(i) * step
		yValueNorm := (yValues[i] - yValues[0]) / span
		diff[i] = yValueNorm - xValue
	}

	extremaCount := 0
	for i := 1; i < len(diff); i++ {
		var extremum bool
		if i == len(diff)-1 {
			// the last point has no successor
			extremum = diff[i] > diff[i-1] && (i < 2 || diff[i] > diff[i-2])
		} else {
			extremum = diff[i] > diff[i-1] && diff[i] > diff[i+1]
		}
		if !extremum {
			continue
		}
		extremaCount++
		if extremaCount >= cutOff {
			return i
		}
	}
	return len(yValues)
}
