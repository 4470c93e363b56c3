package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"PromoPulse/internal/domain/models"
)

// DefaultDedupWindow is the interval within which a fresh detection for
// the same metric supersedes an earlier one.
const DefaultDedupWindow = time.Hour

// AnomalyStore keeps the running set of detected anomalies in memory.
// Persistence across restarts is an external concern.
type AnomalyStore struct {
	mu        sync.RWMutex
	window    time.Duration
	anomalies []*models.DetectedAnomaly
}

// NewAnomalyStore creates an empty store with the default dedup window.
func NewAnomalyStore() *AnomalyStore {
	return &AnomalyStore{window: DefaultDedupWindow}
}

// SetDedupWindow overrides the dedup window. No-op for non-positive values.
func (s *AnomalyStore) SetDedupWindow(d time.Duration) {
	if d > 0 {
		s.mu.Lock()
		s.window = d
		s.mu.Unlock()
	}
}

// Merge folds a cycle's batch into the stored set. An existing anomaly is
// discarded when any new anomaly shares its metric name and was detected
// less than the dedup window away; everything in the batch is then appended.
// Anomalies for the same metric spaced further apart coexist.
func (s *AnomalyStore) Merge(batch []*models.DetectedAnomaly) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.anomalies[:0]
	for _, existing := range s.anomalies {
		if supersededBy(existing, batch, s.window) {
			continue
		}
		kept = append(kept, existing)
	}
	s.anomalies = append(kept, batch...)
}

func supersededBy(existing *models.DetectedAnomaly, batch []*models.DetectedAnomaly, window time.Duration) bool {
	for _, fresh := range batch {
		if fresh.MetricName != existing.MetricName {
			continue
		}
		gap := fresh.DetectedAt.Sub(existing.DetectedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap < window {
			return true
		}
	}
	return false
}

// UpdateStatus sets the triage status of one anomaly. Any status is
// reachable from any other; unknown ids are an error.
func (s *AnomalyStore) UpdateStatus(id string, status models.AnomalyStatus) error {
	if !models.IsValidAnomalyStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.anomalies {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrAnomalyNotFound, id)
}

// Get returns an anomaly by id.
func (s *AnomalyStore) Get(id string) (*models.DetectedAnomaly, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.anomalies {
		if a.ID == id {
			cp := *a
			return &cp, true
		}
	}
	return nil, false
}

// List returns copies of stored anomalies passing the filter, newest first.
func (s *AnomalyStore) List(filter models.AnomalyFilter) []*models.DetectedAnomaly {
	s.mu.RLock()
	out := make([]*models.DetectedAnomaly, 0, len(s.anomalies))
	for _, a := range s.anomalies {
		if filter.Matches(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

// Stats aggregates the stored set on demand; nothing is cached.
func (s *AnomalyStore) Stats() models.AnomalyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.AnomalyStats{
		Total: len(s.anomalies),
		BySeverity: map[models.Severity]int{
			models.SeverityCritical: 0,
			models.SeverityHigh:     0,
			models.SeverityMedium:   0,
			models.SeverityLow:      0,
		},
		ByStatus: map[models.AnomalyStatus]int{
			models.StatusNew:          0,
			models.StatusAcknowledged: 0,
			models.StatusResolved:     0,
			models.StatusIgnored:      0,
		},
	}
	for _, a := range s.anomalies {
		st.BySeverity[a.Severity]++
		st.ByStatus[a.Status]++
	}
	return st
}
