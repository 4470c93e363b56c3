package engine

import (
	"context"
	"fmt"
	"time"

	"PromoPulse/internal/domain/models"
	domrepo "PromoPulse/internal/domain/repository"
	applogger "PromoPulse/pkg/logger"
)

// DefaultInterval is the tick period between detection cycles.
const DefaultInterval = 5 * time.Minute

// DetectionScheduler drives detection cycles: one immediately on Start,
// then on a fixed interval, plus on-demand runs. A single loop goroutine
// serializes ticks and manual runs, so cycles never overlap; within one
// cycle the threshold evaluations fan out concurrently.
type DetectionScheduler struct {
	registry  *ThresholdRegistry
	evaluator *MetricEvaluator
	store     *AnomalyStore
	notifier  domrepo.AlertNotifier
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	interval  time.Duration

	// onBatch is invoked after merge with the cycle's batch (may be empty).
	onBatch func([]*models.DetectedAnomaly)

	runCh  chan runRequest
	cancel context.CancelFunc
	done   chan struct{}
}

type runRequest struct {
	reply chan []*models.DetectedAnomaly
}

// NewDetectionScheduler wires a scheduler. notifier and metrics may be nil.
func NewDetectionScheduler(
	registry *ThresholdRegistry,
	evaluator *MetricEvaluator,
	store *AnomalyStore,
	notifier domrepo.AlertNotifier,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	interval time.Duration,
) *DetectionScheduler {
	if l == nil {
		l = applogger.Nop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &DetectionScheduler{
		registry:  registry,
		evaluator: evaluator,
		store:     store,
		notifier:  notifier,
		metrics:   metrics,
		logger:    l,
		interval:  interval,
		runCh:     make(chan runRequest),
	}
}

// OnBatch registers a callback receiving every completed cycle's batch.
// Must be set before Start.
func (s *DetectionScheduler) OnBatch(fn func([]*models.DetectedAnomaly)) {
	s.onBatch = fn
}

// Start launches the scheduler loop. The first cycle runs immediately.
func (s *DetectionScheduler) Start() {
	if s.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
	s.logger.Info("detection scheduler started", applogger.Duration("interval", s.interval))
}

// Stop cancels the ticker and waits for any in-flight cycle to drain.
func (s *DetectionScheduler) Stop() {
	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.done = nil
	s.logger.Info("detection scheduler stopped")
}

// RunNow triggers one cycle out of band and returns its batch. Used by the
// API after threshold edits. If the scheduler loop is not running the
// cycle executes inline.
func (s *DetectionScheduler) RunNow(ctx context.Context) ([]*models.DetectedAnomaly, error) {
	if s.done == nil {
		return s.runCycle(ctx), nil
	}
	req := runRequest{reply: make(chan []*models.DetectedAnomaly, 1)}
	select {
	case s.runCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case batch := <-req.reply:
		return batch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DetectionScheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		case req := <-s.runCh:
			req.reply <- s.runCycle(ctx)
		}
	}
}

// runCycle snapshots the enabled thresholds, evaluates them concurrently
// with per-task failure isolation, merges the collected batch and notifies
// the alert channel for critical anomalies before returning.
func (s *DetectionScheduler) runCycle(ctx context.Context) []*models.DetectedAnomaly {
	start := time.Now()
	thresholds := s.registry.ListEnabled()

	results := make(chan *models.DetectedAnomaly, len(thresholds))
	for _, t := range thresholds {
		go func(t models.Threshold) {
			results <- s.evaluateSettled(ctx, t)
		}(t)
	}

	batch := make([]*models.DetectedAnomaly, 0, len(thresholds))
	for range thresholds {
		if a := <-results; a != nil {
			batch = append(batch, a)
		}
	}

	s.store.Merge(batch)

	for _, a := range batch {
		if s.metrics != nil {
			s.metrics.RecordAnomaly(string(a.Severity))
		}
		if a.Severity == models.SeverityCritical && s.notifier != nil {
			if err := s.notifier.Notify(ctx, a); err != nil {
				s.logger.Warn("alert notify failed",
					applogger.String("metric", a.MetricName),
					applogger.Error(err),
				)
			}
		}
	}

	if s.onBatch != nil {
		s.onBatch(batch)
	}

	if s.metrics != nil {
		s.metrics.RecordCycle(time.Since(start).Seconds(), len(batch))
	}
	s.logger.Debug("detection cycle complete",
		applogger.Int("thresholds", len(thresholds)),
		applogger.Int("anomalies", len(batch)),
		applogger.Duration("took", time.Since(start)),
	)
	return batch
}

// evaluateSettled runs one evaluation with panic isolation so a failing
// threshold can never abort the rest of the cycle.
func (s *DetectionScheduler) evaluateSettled(ctx context.Context, t models.Threshold) (a *models.DetectedAnomaly) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("threshold evaluation panic",
				applogger.String("metric", t.MetricName),
				applogger.Error(fmt.Errorf("%v", r)),
			)
			if s.metrics != nil {
				s.metrics.RecordEvaluationError(t.MetricName)
			}
			a = nil
		}
	}()
	return s.evaluator.Evaluate(ctx, t)
}
