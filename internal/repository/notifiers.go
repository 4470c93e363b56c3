package repository

import (
	"context"

	"PromoPulse/internal/domain/models"
	domrepo "PromoPulse/internal/domain/repository"
	pkgkafka "PromoPulse/pkg/kafka"
	applogger "PromoPulse/pkg/logger"
)

// LogAlertNotifier writes critical anomalies to the structured log. Always
// wired so criticals are visible even with no delivery channel configured.
type LogAlertNotifier struct {
	l *applogger.Logger
}

func NewLogAlertNotifier(l *applogger.Logger) *LogAlertNotifier {
	if l == nil {
		l = applogger.Nop()
	}
	return &LogAlertNotifier{l: l}
}

func (n *LogAlertNotifier) Notify(_ context.Context, a *models.DetectedAnomaly) error {
	n.l.Error("critical anomaly detected",
		applogger.String("metric", a.MetricName),
		applogger.Float64("current", a.CurrentValue),
		applogger.Float64("expected", a.ExpectedValue),
		applogger.Float64("deviation_pct", a.DeviationPercentage),
		applogger.String("description", a.Description),
	)
	return nil
}

// KafkaAlertNotifier publishes critical anomalies to an alerts topic for
// downstream delivery (email, Slack, pager). Keyed by metric name so all
// alerts for one metric land in the same partition.
type KafkaAlertNotifier struct {
	producer *pkgkafka.Producer
	topic    string
	metrics  domrepo.Metrics
}

func NewKafkaAlertNotifier(producer *pkgkafka.Producer, topic string, metrics domrepo.Metrics) *KafkaAlertNotifier {
	return &KafkaAlertNotifier{producer: producer, topic: topic, metrics: metrics}
}

func (n *KafkaAlertNotifier) Notify(ctx context.Context, a *models.DetectedAnomaly) error {
	if err := n.producer.Publish(ctx, n.topic, []byte(a.MetricName), a); err != nil {
		return err
	}
	if n.metrics != nil {
		n.metrics.RecordAlertPublished("kafka")
	}
	return nil
}

// MultiNotifier fans one anomaly out to several channels. Each channel is
// best-effort; the first error is returned for logging but later channels
// still run.
type MultiNotifier struct {
	notifiers []domrepo.AlertNotifier
}

func NewMultiNotifier(notifiers ...domrepo.AlertNotifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (n *MultiNotifier) Notify(ctx context.Context, a *models.DetectedAnomaly) error {
	var first error
	for _, sub := range n.notifiers {
		if err := sub.Notify(ctx, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}
