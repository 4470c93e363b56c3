package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"PromoPulse/internal/domain/models"
)

// ThresholdRegistry holds the configured detection rules. Persistence is an
// external concern; the registry is seeded with defaults at construction
// and mutated through the engine API afterwards.
type ThresholdRegistry struct {
	mu         sync.RWMutex
	thresholds map[string]models.Threshold
}

// NewThresholdRegistry creates an empty registry.
func NewThresholdRegistry() *ThresholdRegistry {
	return &ThresholdRegistry{thresholds: make(map[string]models.Threshold)}
}

// NewDefaultThresholdRegistry creates a registry seeded with the stock
// rules for the membership dashboard metrics. Each gets a fresh id.
func NewDefaultThresholdRegistry() *ThresholdRegistry {
	r := NewThresholdRegistry()
	for _, t := range defaultThresholds() {
		t.ID = uuid.NewString()
		r.thresholds[t.ID] = t
	}
	return r
}

func defaultThresholds() []models.Threshold {
	return []models.Threshold{
		{
			MetricName:  "member_signup_rate",
			Type:        models.ThresholdChangeRate,
			Value:       -50,
			Period:      models.GranDay,
			Severity:    models.SeverityHigh,
			Enabled:     true,
			Description: "Daily member signups dropped by more than half",
		},
		{
			MetricName:  "submission_approval_rate",
			Type:        models.ThresholdLower,
			Value:       60,
			Period:      models.GranDay,
			Severity:    models.SeverityMedium,
			Enabled:     true,
			Description: "Track submission approval rate fell below 60%",
		},
		{
			MetricName:  "campaign_completion_rate",
			Type:        models.ThresholdLower,
			Value:       80,
			Period:      models.GranWeek,
			Severity:    models.SeverityHigh,
			Enabled:     true,
			Description: "Promotion campaign completion rate fell below 80%",
		},
		{
			MetricName:  "member_activity_rate",
			Type:        models.ThresholdChangeRate,
			Value:       -30,
			Period:      models.GranWeek,
			Severity:    models.SeverityMedium,
			Enabled:     true,
			Description: "Weekly member activity dropped by more than 30%",
		},
		{
			MetricName:  "revenue_per_campaign",
			Type:        models.ThresholdChangeRate,
			Value:       -40,
			Period:      models.GranMonth,
			Severity:    models.SeverityCritical,
			Enabled:     true,
			Description: "Monthly revenue per campaign dropped by more than 40%",
		},
		{
			MetricName:  "queue_fill_rate",
			Type:        models.ThresholdLower,
			Value:       70,
			Period:      models.GranDay,
			Severity:    models.SeverityMedium,
			Enabled:     true,
			Description: "Review queue fill rate fell below 70%",
		},
		{
			MetricName:  "member_churn_rate",
			Type:        models.ThresholdUpper,
			Value:       15,
			Period:      models.GranMonth,
			Severity:    models.SeverityHigh,
			Enabled:     true,
			Description: "Monthly member churn exceeded 15%",
		},
	}
}

// Add inserts a threshold. A missing id gets a fresh one. Returns the
// stored threshold.
func (r *ThresholdRegistry) Add(t models.Threshold) (models.Threshold, error) {
	if err := validateThreshold(&t); err != nil {
		return models.Threshold{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.thresholds[t.ID] = t
	r.mu.Unlock()
	return t, nil
}

// Upsert replaces the threshold with the same id, inserting when absent.
func (r *ThresholdRegistry) Upsert(t models.Threshold) (models.Threshold, error) {
	return r.Add(t)
}

// Remove deletes a threshold by id. Unknown ids are an error.
func (r *ThresholdRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.thresholds[id]; !ok {
		return fmt.Errorf("%w: %s", ErrThresholdNotFound, id)
	}
	delete(r.thresholds, id)
	return nil
}

// Get returns a threshold by id.
func (r *ThresholdRegistry) Get(id string) (models.Threshold, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.thresholds[id]
	return t, ok
}

// List returns a copy of all thresholds.
func (r *ThresholdRegistry) List() []models.Threshold {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Threshold, 0, len(r.thresholds))
	for _, t := range r.thresholds {
		out = append(out, t)
	}
	return out
}

// ListEnabled returns a snapshot of enabled thresholds. The scheduler takes
// this snapshot at cycle start so registry edits mid-cycle are invisible to
// the running cycle.
func (r *ThresholdRegistry) ListEnabled() []models.Threshold {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Threshold, 0, len(r.thresholds))
	for _, t := range r.thresholds {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

func validateThreshold(t *models.Threshold) error {
	if t.MetricName == "" {
		return fmt.Errorf("metric_name is required")
	}
	if !models.IsValidThresholdType(t.Type) {
		return fmt.Errorf("invalid threshold_type %q", t.Type)
	}
	if !models.IsValidSeverity(t.Severity) {
		return fmt.Errorf("invalid severity %q", t.Severity)
	}
	if !models.IsValidGranularity(t.Period) {
		return fmt.Errorf("invalid comparison_period %q", t.Period)
	}
	return nil
}
