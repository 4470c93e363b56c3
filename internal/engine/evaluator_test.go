package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"PromoPulse/internal/domain/models"
)

// fakeHistory serves canned sample series per metric name.
type fakeHistory struct {
	series map[string][]float64
	errs   map[string]error
	calls  int
}

func (f *fakeHistory) Fetch(_ context.Context, metric string, _ models.Granularity, count int) ([]float64, error) {
	f.calls++
	if err, ok := f.errs[metric]; ok {
		return nil, err
	}
	s := f.series[metric]
	if len(s) > count {
		s = s[:count]
	}
	return s, nil
}

func newTestEvaluator(h *fakeHistory) *MetricEvaluator {
	return NewMetricEvaluator(h, nil, nil)
}

func threshold(metric string, typ models.ThresholdType, value float64) models.Threshold {
	return models.Threshold{
		ID:          "t-" + metric,
		MetricName:  metric,
		Type:        typ,
		Value:       value,
		Period:      models.GranDay,
		Severity:    models.SeverityMedium,
		Enabled:     true,
		Description: "test rule",
	}
}

func TestEvaluateLowerBreach(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"approval": {55, 70}}}
	a := newTestEvaluator(h).Evaluate(context.Background(), threshold("approval", models.ThresholdLower, 60))
	if a == nil {
		t.Fatalf("expected anomaly")
	}
	if a.ExpectedValue != 60 {
		t.Fatalf("expected_value = %v, want 60", a.ExpectedValue)
	}
	if math.Abs(a.DeviationPercentage-8.333333) > 0.001 {
		t.Fatalf("deviation = %v, want ~8.33", a.DeviationPercentage)
	}
	if a.CurrentValue != 55 || a.Status != models.StatusNew || a.Severity != models.SeverityMedium {
		t.Fatalf("unexpected anomaly fields: %+v", a)
	}
}

func TestEvaluateUpperBreach(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"churn": {20, 12}}}
	a := newTestEvaluator(h).Evaluate(context.Background(), threshold("churn", models.ThresholdUpper, 15))
	if a == nil {
		t.Fatalf("expected anomaly")
	}
	if a.ExpectedValue != 15 {
		t.Fatalf("expected_value = %v, want 15", a.ExpectedValue)
	}
	if math.Abs(a.DeviationPercentage-33.333333) > 0.001 {
		t.Fatalf("deviation = %v, want ~33.33", a.DeviationPercentage)
	}
}

func TestEvaluateUpperNoBreach(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"churn": {14, 12}}}
	if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("churn", models.ThresholdUpper, 15)); a != nil {
		t.Fatalf("expected no anomaly, got %+v", a)
	}
}

func TestEvaluateChangeRateBreach(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"signups": {40, 100}}}
	a := newTestEvaluator(h).Evaluate(context.Background(), threshold("signups", models.ThresholdChangeRate, -50))
	if a == nil {
		t.Fatalf("expected anomaly for -60%% change against -50%% limit")
	}
	if a.ExpectedValue != 100 {
		t.Fatalf("expected_value = %v, want previous sample 100", a.ExpectedValue)
	}
	if math.Abs(a.DeviationPercentage-10) > 1e-9 {
		t.Fatalf("deviation = %v, want 10", a.DeviationPercentage)
	}
}

func TestEvaluateChangeRateWithinLimit(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"signups": {60, 100}}}
	if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("signups", models.ThresholdChangeRate, -50)); a != nil {
		t.Fatalf("-40%% change must not breach a -50%% limit")
	}
}

func TestEvaluateChangeRateSkipsNonPositiveBaseline(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"signups": {-80, 0}}}
	if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("signups", models.ThresholdChangeRate, -50)); a != nil {
		t.Fatalf("zero baseline must skip change_rate evaluation")
	}
}

func TestEvaluateDeviationConstantSeriesNeverAnomalous(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"revenue": {50, 50, 50, 50, 50, 50}}}
	if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("revenue", models.ThresholdDeviation, 0.001)); a != nil {
		t.Fatalf("flat series must never be anomalous, got %+v", a)
	}
}

func TestEvaluateDeviationOutlier(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"revenue": {500, 100, 110, 90, 105, 95, 100, 100}}}
	a := newTestEvaluator(h).Evaluate(context.Background(), threshold("revenue", models.ThresholdDeviation, 2))
	if a == nil {
		t.Fatalf("expected deviation anomaly")
	}
	// expected value is the 7-sample moving average excluding the current
	want := (100.0 + 110 + 90 + 105 + 95 + 100 + 100) / 7
	if math.Abs(a.ExpectedValue-want) > 1e-9 {
		t.Fatalf("expected_value = %v, want %v", a.ExpectedValue, want)
	}
	if a.DeviationPercentage <= 0 {
		t.Fatalf("deviation must be positive, got %v", a.DeviationPercentage)
	}
}

func TestEvaluateInsufficientHistory(t *testing.T) {
	for _, typ := range []models.ThresholdType{
		models.ThresholdUpper, models.ThresholdLower,
		models.ThresholdChangeRate, models.ThresholdDeviation,
	} {
		for _, series := range [][]float64{nil, {42}} {
			h := &fakeHistory{series: map[string][]float64{"m": series}}
			if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("m", typ, 1)); a != nil {
				t.Fatalf("type %s with %d samples: expected no anomaly", typ, len(series))
			}
		}
	}
}

func TestEvaluateProviderFailureYieldsNone(t *testing.T) {
	h := &fakeHistory{errs: map[string]error{"m": errors.New("clickhouse timeout")}}
	if a := newTestEvaluator(h).Evaluate(context.Background(), threshold("m", models.ThresholdLower, 60)); a != nil {
		t.Fatalf("provider error must yield no anomaly")
	}
}

func TestEvaluateSnapshotsThreshold(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{"approval": {55, 70}}}
	th := threshold("approval", models.ThresholdLower, 60)
	e := newTestEvaluator(h)
	e.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	a := e.Evaluate(context.Background(), th)
	if a == nil {
		t.Fatalf("expected anomaly")
	}
	if !a.DetectedAt.Equal(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("detected_at not taken from clock")
	}

	// mutate the caller's copy; snapshot on the anomaly must not move
	th.Value = 99
	if a.ThresholdBreached.Value != 60 {
		t.Fatalf("anomaly must snapshot the threshold at detection time")
	}
}
