// Package engine implements the metric anomaly-detection core for the
// membership dashboard: configurable thresholds evaluated on a schedule
// against business-metric history, producing deduplicated, severity-ranked
// anomalies.
package engine

import (
	"context"
	"time"

	"PromoPulse/internal/domain/models"
	domrepo "PromoPulse/internal/domain/repository"
	applogger "PromoPulse/pkg/logger"
)

// DetectionEngine is the owned service facade the host application talks
// to. It holds the registry and store behind their own locks and exposes
// an explicit Start/Stop lifecycle for the scheduler.
type DetectionEngine struct {
	registry  *ThresholdRegistry
	store     *AnomalyStore
	scheduler *DetectionScheduler
}

// Options tune engine construction.
type Options struct {
	// Interval between scheduled detection cycles; DefaultInterval if zero.
	Interval time.Duration
	// SeedDefaults seeds the registry with the stock dashboard thresholds.
	SeedDefaults bool
	// HistorySamples caps the per-evaluation fetch; DefaultHistorySamples
	// if zero.
	HistorySamples int
	// DedupWindow overrides the anomaly dedup window; DefaultDedupWindow
	// if zero.
	DedupWindow time.Duration
	// Metrics is optional operational instrumentation.
	Metrics domrepo.Metrics
	// Logger defaults to a no-op logger.
	Logger *applogger.Logger
}

// New assembles a detection engine around the given history provider and
// alert notifier.
func New(provider domrepo.MetricHistoryProvider, notifier domrepo.AlertNotifier, opts Options) *DetectionEngine {
	l := opts.Logger
	if l == nil {
		l = applogger.Nop()
	}

	var registry *ThresholdRegistry
	if opts.SeedDefaults {
		registry = NewDefaultThresholdRegistry()
	} else {
		registry = NewThresholdRegistry()
	}

	store := NewAnomalyStore()
	store.SetDedupWindow(opts.DedupWindow)
	evaluator := NewMetricEvaluator(provider, opts.Metrics, l)
	evaluator.SetHistorySamples(opts.HistorySamples)
	scheduler := NewDetectionScheduler(registry, evaluator, store, notifier, opts.Metrics, l, opts.Interval)

	return &DetectionEngine{
		registry:  registry,
		store:     store,
		scheduler: scheduler,
	}
}

// Start begins periodic detection. The first cycle runs immediately.
func (e *DetectionEngine) Start() { e.scheduler.Start() }

// Stop halts the scheduler, draining any in-flight cycle.
func (e *DetectionEngine) Stop() { e.scheduler.Stop() }

// OnBatch registers a listener for each completed cycle's batch (used by
// the live anomaly feed). Must be called before Start.
func (e *DetectionEngine) OnBatch(fn func([]*models.DetectedAnomaly)) {
	e.scheduler.OnBatch(fn)
}

// RunDetectionCycle runs one cycle on demand and returns its batch.
func (e *DetectionEngine) RunDetectionCycle(ctx context.Context) ([]*models.DetectedAnomaly, error) {
	return e.scheduler.RunNow(ctx)
}

// ListAnomalies returns stored anomalies passing the filter, newest first.
func (e *DetectionEngine) ListAnomalies(filter models.AnomalyFilter) []*models.DetectedAnomaly {
	return e.store.List(filter)
}

// UpdateAnomalyStatus mutates the triage status of one anomaly.
func (e *DetectionEngine) UpdateAnomalyStatus(id string, status models.AnomalyStatus) error {
	return e.store.UpdateStatus(id, status)
}

// GetAnomaly returns a stored anomaly by id.
func (e *DetectionEngine) GetAnomaly(id string) (*models.DetectedAnomaly, bool) {
	return e.store.Get(id)
}

// GetStats aggregates the current anomaly set.
func (e *DetectionEngine) GetStats() models.AnomalyStats {
	return e.store.Stats()
}

// UpsertThreshold inserts or replaces a detection rule.
func (e *DetectionEngine) UpsertThreshold(t models.Threshold) (models.Threshold, error) {
	return e.registry.Upsert(t)
}

// RemoveThreshold deletes a detection rule by id.
func (e *DetectionEngine) RemoveThreshold(id string) error {
	return e.registry.Remove(id)
}

// ListThresholds returns all configured detection rules.
func (e *DetectionEngine) ListThresholds() []models.Threshold {
	return e.registry.List()
}
