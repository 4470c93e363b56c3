package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"PromoPulse/internal/domain/models"
	domrepo "PromoPulse/internal/domain/repository"
	"PromoPulse/internal/stats"
	applogger "PromoPulse/pkg/logger"
)

// DefaultHistorySamples is the maximum number of historical samples
// fetched per evaluation.
const DefaultHistorySamples = 30

// MetricEvaluator applies one threshold against the metric's recent
// history and produces zero or one anomaly.
type MetricEvaluator struct {
	provider domrepo.MetricHistoryProvider
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	samples  int
	now      func() time.Time
}

// NewMetricEvaluator creates an evaluator. metrics may be nil.
func NewMetricEvaluator(provider domrepo.MetricHistoryProvider, metrics domrepo.Metrics, l *applogger.Logger) *MetricEvaluator {
	if l == nil {
		l = applogger.Nop()
	}
	return &MetricEvaluator{
		provider: provider,
		metrics:  metrics,
		logger:   l,
		samples:  DefaultHistorySamples,
		now:      time.Now,
	}
}

// SetHistorySamples overrides the per-evaluation fetch size.
func (e *MetricEvaluator) SetHistorySamples(n int) {
	if n > 0 {
		e.samples = n
	}
}

// Evaluate fetches history for the threshold's metric and runs the
// comparison strategy for its type. Provider failures and insufficient
// data both yield (nil, no anomaly); evaluation never propagates errors
// into the cycle.
func (e *MetricEvaluator) Evaluate(ctx context.Context, t models.Threshold) *models.DetectedAnomaly {
	start := time.Now()
	samples, err := e.provider.Fetch(ctx, t.MetricName, t.Period, e.samples)
	if e.metrics != nil {
		e.metrics.RecordFetchLatency(string(t.Period), time.Since(start).Seconds())
	}
	if err != nil {
		e.logger.Warn("metric history fetch failed",
			applogger.String("metric", t.MetricName),
			applogger.String("period", string(t.Period)),
			applogger.Error(err),
		)
		if e.metrics != nil {
			e.metrics.RecordEvaluationError(t.MetricName)
		}
		return nil
	}
	if len(samples) < 2 {
		return nil
	}

	current := samples[0]
	previous := samples[1]

	var (
		breached  bool
		expected  float64
		deviation float64
	)

	switch t.Type {
	case models.ThresholdUpper:
		if current > t.Value {
			breached = true
			expected = t.Value
			deviation = (current - t.Value) / t.Value * 100
		}
	case models.ThresholdLower:
		if current < t.Value {
			breached = true
			expected = t.Value
			deviation = (t.Value - current) / t.Value * 100
		}
	case models.ThresholdChangeRate:
		// A non-positive baseline makes the rate meaningless; skip.
		if previous > 0 {
			changeRate := (current - previous) / previous * 100
			if changeRate < t.Value {
				breached = true
				expected = previous
				deviation = math.Abs(changeRate - t.Value)
			}
		}
	case models.ThresholdDeviation:
		ok, normalized := stats.DetectStatisticalAnomaly(samples, t.Value)
		if ok {
			breached = true
			expected = stats.MovingAverage(samples[1:], stats.DefaultWindow)
			deviation = normalized * 100
		}
	default:
		e.logger.Error("unknown threshold type",
			applogger.String("metric", t.MetricName),
			applogger.String("type", string(t.Type)),
		)
		return nil
	}

	if !breached {
		return nil
	}

	return &models.DetectedAnomaly{
		ID:                  uuid.NewString(),
		MetricName:          t.MetricName,
		CurrentValue:        current,
		ExpectedValue:       expected,
		DeviationPercentage: math.Abs(deviation),
		ThresholdBreached:   t,
		DetectedAt:          e.now(),
		Severity:            t.Severity,
		Status:              models.StatusNew,
		Description:         t.Description,
	}
}
