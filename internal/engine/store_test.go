package engine

import (
	"testing"
	"time"

	"PromoPulse/internal/domain/models"
)

func anomalyAt(id, metric string, at time.Time) *models.DetectedAnomaly {
	return &models.DetectedAnomaly{
		ID:         id,
		MetricName: metric,
		DetectedAt: at,
		Severity:   models.SeverityMedium,
		Status:     models.StatusNew,
	}
}

func TestMergeDedupWithinWindow(t *testing.T) {
	s := NewAnomalyStore()
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	s.Merge([]*models.DetectedAnomaly{anomalyAt("old", "queue_fill_rate", t0)})
	s.Merge([]*models.DetectedAnomaly{anomalyAt("new", "queue_fill_rate", t0.Add(30*time.Minute))})

	got := s.List(models.AnomalyFilter{})
	if len(got) != 1 {
		t.Fatalf("expected dedup to keep one anomaly, got %d", len(got))
	}
	if got[0].ID != "new" {
		t.Fatalf("expected the fresh detection to supersede, kept %q", got[0].ID)
	}
}

func TestMergeKeepsAnomaliesOutsideWindow(t *testing.T) {
	s := NewAnomalyStore()
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	s.Merge([]*models.DetectedAnomaly{anomalyAt("old", "queue_fill_rate", t0)})
	s.Merge([]*models.DetectedAnomaly{anomalyAt("new", "queue_fill_rate", t0.Add(90*time.Minute))})

	if got := s.List(models.AnomalyFilter{}); len(got) != 2 {
		t.Fatalf("anomalies 90m apart must coexist, got %d", len(got))
	}
}

func TestMergeRespectsConfiguredWindow(t *testing.T) {
	s := NewAnomalyStore()
	s.SetDedupWindow(10 * time.Minute)
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	s.Merge([]*models.DetectedAnomaly{anomalyAt("old", "queue_fill_rate", t0)})
	s.Merge([]*models.DetectedAnomaly{anomalyAt("new", "queue_fill_rate", t0.Add(30*time.Minute))})

	if got := s.List(models.AnomalyFilter{}); len(got) != 2 {
		t.Fatalf("30m apart with a 10m window must coexist, got %d", len(got))
	}
}

func TestMergeDifferentMetricsUntouched(t *testing.T) {
	s := NewAnomalyStore()
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	s.Merge([]*models.DetectedAnomaly{anomalyAt("a", "member_churn_rate", t0)})
	s.Merge([]*models.DetectedAnomaly{anomalyAt("b", "queue_fill_rate", t0.Add(time.Minute))})

	if got := s.List(models.AnomalyFilter{}); len(got) != 2 {
		t.Fatalf("dedup must be per metric, got %d", len(got))
	}
}

func TestMergeEmptyBatchIsNoop(t *testing.T) {
	s := NewAnomalyStore()
	s.Merge([]*models.DetectedAnomaly{anomalyAt("a", "m", time.Now())})
	s.Merge(nil)
	if got := s.List(models.AnomalyFilter{}); len(got) != 1 {
		t.Fatalf("empty merge must not change the store")
	}
}

func TestUpdateStatus(t *testing.T) {
	s := NewAnomalyStore()
	s.Merge([]*models.DetectedAnomaly{anomalyAt("a", "m", time.Now())})

	if err := s.UpdateStatus("a", models.StatusAcknowledged); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := s.Get("a")
	if !ok || got.Status != models.StatusAcknowledged {
		t.Fatalf("status not applied: %+v", got)
	}

	// any status is reachable from any other
	if err := s.UpdateStatus("a", models.StatusNew); err != nil {
		t.Fatalf("back to new: %v", err)
	}

	if err := s.UpdateStatus("missing", models.StatusResolved); err == nil {
		t.Fatalf("expected error for unknown id")
	}
	if err := s.UpdateStatus("a", "escalated"); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}

func TestStatsEmptyStore(t *testing.T) {
	st := NewAnomalyStore().Stats()
	if st.Total != 0 {
		t.Fatalf("expected zero total")
	}
	for sev, n := range st.BySeverity {
		if n != 0 {
			t.Fatalf("severity %s count = %d, want 0", sev, n)
		}
	}
	for status, n := range st.ByStatus {
		if n != 0 {
			t.Fatalf("status %s count = %d, want 0", status, n)
		}
	}
	if len(st.BySeverity) != 4 || len(st.ByStatus) != 4 {
		t.Fatalf("stats must enumerate every severity and status")
	}
}

func TestStatsPartitionsSumToTotal(t *testing.T) {
	s := NewAnomalyStore()
	now := time.Now()
	batch := []*models.DetectedAnomaly{
		{ID: "1", MetricName: "a", DetectedAt: now, Severity: models.SeverityCritical, Status: models.StatusNew},
		{ID: "2", MetricName: "b", DetectedAt: now, Severity: models.SeverityHigh, Status: models.StatusAcknowledged},
		{ID: "3", MetricName: "c", DetectedAt: now, Severity: models.SeverityHigh, Status: models.StatusResolved},
		{ID: "4", MetricName: "d", DetectedAt: now, Severity: models.SeverityLow, Status: models.StatusIgnored},
	}
	s.Merge(batch)

	st := s.Stats()
	if st.Total != 4 {
		t.Fatalf("total = %d, want 4", st.Total)
	}
	var bySev, byStatus int
	for _, n := range st.BySeverity {
		bySev += n
	}
	for _, n := range st.ByStatus {
		byStatus += n
	}
	if bySev != st.Total || byStatus != st.Total {
		t.Fatalf("partitions must sum to total: severity=%d status=%d total=%d", bySev, byStatus, st.Total)
	}
	if st.BySeverity[models.SeverityHigh] != 2 {
		t.Fatalf("high count = %d, want 2", st.BySeverity[models.SeverityHigh])
	}
}

func TestListFilterAndOrder(t *testing.T) {
	s := NewAnomalyStore()
	t0 := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	s.Merge([]*models.DetectedAnomaly{
		anomalyAt("a", "signups", t0),
		anomalyAt("b", "revenue", t0.Add(time.Hour)),
	})
	s.Merge([]*models.DetectedAnomaly{anomalyAt("c", "signups", t0.Add(3*time.Hour))})

	all := s.List(models.AnomalyFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 anomalies, got %d", len(all))
	}
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("expected newest-first ordering, got %s..%s", all[0].ID, all[2].ID)
	}

	signups := s.List(models.AnomalyFilter{MetricName: "signups"})
	if len(signups) != 2 {
		t.Fatalf("metric filter: got %d", len(signups))
	}

	ranged := s.List(models.AnomalyFilter{From: t0.Add(30 * time.Minute), To: t0.Add(2 * time.Hour)})
	if len(ranged) != 1 || ranged[0].ID != "b" {
		t.Fatalf("time-range filter failed: %+v", ranged)
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := NewAnomalyStore()
	s.Merge([]*models.DetectedAnomaly{anomalyAt("a", "m", time.Now())})
	out := s.List(models.AnomalyFilter{})
	out[0].Status = models.StatusResolved
	got, _ := s.Get("a")
	if got.Status != models.StatusNew {
		t.Fatalf("List must return copies, store was mutated")
	}
}
