package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMovingAverageWindowSmallerThanSamples(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50}
	got := MovingAverage(samples, 3)
	if !almostEqual(got, 20) {
		t.Fatalf("expected 20, got %v", got)
	}
}

func TestMovingAverageWindowLargerThanSamples(t *testing.T) {
	samples := []float64{3, 6}
	got := MovingAverage(samples, 7)
	if !almostEqual(got, 4.5) {
		t.Fatalf("expected 4.5, got %v", got)
	}
}

func TestMovingAverageEmpty(t *testing.T) {
	if got := MovingAverage(nil, 7); got != 0 {
		t.Fatalf("expected 0 for empty samples, got %v", got)
	}
}

func TestStdDevPopulation(t *testing.T) {
	// mean=4, squared diffs: 4+0+4 => variance 8/3
	samples := []float64{2, 4, 6}
	want := math.Sqrt(8.0 / 3.0)
	if got := StdDev(samples); !almostEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStdDevConstantSeries(t *testing.T) {
	samples := []float64{5, 5, 5, 5}
	if got := StdDev(samples); got != 0 {
		t.Fatalf("expected 0 for constant series, got %v", got)
	}
}

func TestDetectStatisticalAnomalyTooFewSamples(t *testing.T) {
	ok, dev := DetectStatisticalAnomaly([]float64{100, 1}, 1)
	if ok || dev != 0 {
		t.Fatalf("expected no anomaly with <3 samples, got ok=%v dev=%v", ok, dev)
	}
}

func TestDetectStatisticalAnomalyZeroStdDev(t *testing.T) {
	samples := []float64{7, 7, 7, 7, 7}
	ok, dev := DetectStatisticalAnomaly(samples, 0.0001)
	if ok {
		t.Fatalf("constant series must never be anomalous")
	}
	if dev != 0 {
		t.Fatalf("expected deviation forced to 0, got %v", dev)
	}
}

func TestDetectStatisticalAnomalyOutlier(t *testing.T) {
	samples := []float64{100, 10, 10, 10, 10, 10, 10}
	ok, dev := DetectStatisticalAnomaly(samples, 1.5)
	if !ok {
		t.Fatalf("expected anomaly, deviation=%v", dev)
	}
	if dev <= 1.5 {
		t.Fatalf("expected deviation above multiplier, got %v", dev)
	}
}

func TestDetectStatisticalAnomalyWithinBand(t *testing.T) {
	samples := []float64{11, 10, 12, 9, 11, 10, 12}
	ok, _ := DetectStatisticalAnomaly(samples, 3)
	if ok {
		t.Fatalf("expected no anomaly for in-band sample")
	}
}
