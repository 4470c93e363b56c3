// Package stats holds the pure statistical primitives behind the deviation
// threshold type. Sample slices are most-recent-first, matching the order
// the history provider returns them in.
package stats

import "math"

// DefaultWindow is the moving-average window used by the deviation
// evaluator when no explicit window is given.
const DefaultWindow = 7

// MovingAverage averages the first min(window, len(samples)) samples.
// Returns 0 for an empty slice or non-positive window.
func MovingAverage(samples []float64, window int) float64 {
	if len(samples) == 0 || window <= 0 {
		return 0
	}
	n := window
	if len(samples) < n {
		n = len(samples)
	}
	var sum float64
	for _, v := range samples[:n] {
		sum += v
	}
	return sum / float64(n)
}

// StdDev computes the population standard deviation (divide by N).
func StdDev(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return math.Sqrt(variance)
}

// DetectStatisticalAnomaly tests whether the newest sample deviates from
// the recent moving average by more than multiplier standard deviations.
// Requires at least 3 samples; a zero standard deviation forces the
// normalized deviation to 0 so a flat series is never anomalous.
func DetectStatisticalAnomaly(samples []float64, multiplier float64) (bool, float64) {
	if len(samples) < 3 {
		return false, 0
	}
	current := samples[0]
	mean := MovingAverage(samples, DefaultWindow)
	sd := StdDev(samples)
	if sd == 0 {
		return false, 0
	}
	deviation := math.Abs(current-mean) / sd
	return deviation > multiplier, deviation
}
