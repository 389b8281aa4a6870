package gesture

import "math"

// extrema counts the local maxima and minima of s whose magnitude is at
// least floor, and returns the count with their mean magnitude. A plateau
// counts once, at its first sample.
func extrema(s []float64, floor float64) (int, float64) {
	count := 0
	sum := 0.0
	for i := 1; i+1 < len(s); i++ {
		isMax := s[i] > s[i-1] && s[i] >= s[i+1]
		isMin := s[i] < s[i-1] && s[i] <= s[i+1]
		if !isMax && !isMin {
			continue
		}
		mag := math.Abs(s[i])
		if mag < floor {
			continue
		}
		count++
		sum += mag
	}
	if count == 0 {
		return 0, 0
	}
	return count, sum / float64(count)
}
