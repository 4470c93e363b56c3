package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal     prometheus.Counter
	cycleDuration   prometheus.Histogram
	cycleBatchSize  prometheus.Histogram
	anomaliesTotal  *prometheus.CounterVec
	evalErrors      *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec
	alertsPublished *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "promopulse_detection_cycles_total",
			Help: "Total number of completed detection cycles",
		}),
		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "promopulse_detection_cycle_duration_seconds",
			Help:    "Duration of detection cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		cycleBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "promopulse_detection_cycle_anomalies",
			Help:    "Anomalies produced per detection cycle",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		anomaliesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promopulse_anomalies_detected_total",
				Help: "Total anomalies detected, by severity",
			},
			[]string{"severity"},
		),
		evalErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promopulse_evaluation_errors_total",
				Help: "Threshold evaluations that failed, by metric",
			},
			[]string{"metric"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promopulse_history_fetch_duration_seconds",
				Help:    "Metric history fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"granularity"},
		),
		alertsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promopulse_alerts_published_total",
				Help: "Critical alerts handed to a notification channel",
			},
			[]string{"channel"},
		),
	}
}

// RecordCycle records one completed detection cycle.
func (r *Recorder) RecordCycle(seconds float64, anomalies int) {
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(seconds)
	r.cycleBatchSize.Observe(float64(anomalies))
}

// RecordAnomaly counts a detected anomaly by severity.
func (r *Recorder) RecordAnomaly(severity string) {
	r.anomaliesTotal.WithLabelValues(severity).Inc()
}

// RecordEvaluationError counts a failed threshold evaluation.
func (r *Recorder) RecordEvaluationError(metric string) {
	r.evalErrors.WithLabelValues(metric).Inc()
}

// RecordFetchLatency records history fetch latency.
func (r *Recorder) RecordFetchLatency(granularity string, seconds float64) {
	r.fetchLatency.WithLabelValues(granularity).Observe(seconds)
}

// RecordAlertPublished counts an alert handed to a channel.
func (r *Recorder) RecordAlertPublished(channel string) {
	r.alertsPublished.WithLabelValues(channel).Inc()
}
