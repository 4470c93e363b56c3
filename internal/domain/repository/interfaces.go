package repository

import (
	"context"

	"PromoPulse/internal/domain/models"
)

// MetricHistoryProvider supplies ordered numeric samples for a metric at a
// given granularity. Samples are most-recent-first. An empty slice is a
// valid answer (insufficient data, not an error); transient failures
// surface as errors the evaluator recovers from per-threshold.
type MetricHistoryProvider interface {
	Fetch(ctx context.Context, metricName string, granularity models.Granularity, count int) ([]float64, error)
}

// AlertNotifier receives critical anomalies for out-of-band delivery.
// Delivery is best-effort; the detection cycle neither retries nor
// inspects the outcome beyond logging.
type AlertNotifier interface {
	Notify(ctx context.Context, anomaly *models.DetectedAnomaly) error
}

// Metrics records operational measurements for the detection engine.
type Metrics interface {
	RecordCycle(seconds float64, anomalies int)
	RecordAnomaly(severity string)
	RecordEvaluationError(metric string)
	RecordFetchLatency(granularity string, seconds float64)
	RecordAlertPublished(channel string)
}
