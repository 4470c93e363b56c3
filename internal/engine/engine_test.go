package engine

import (
	"context"
	"testing"

	"PromoPulse/internal/domain/models"
)

func TestEngineEndToEnd(t *testing.T) {
	h := &fakeHistory{series: map[string][]float64{
		"submission_approval_rate": {55, 70, 72, 68},
	}}
	n := &fakeNotifier{}
	eng := New(h, n, Options{SeedDefaults: false})

	th, err := eng.UpsertThreshold(models.Threshold{
		MetricName:  "submission_approval_rate",
		Type:        models.ThresholdLower,
		Value:       60,
		Period:      models.GranDay,
		Severity:    models.SeverityCritical,
		Enabled:     true,
		Description: "approval rate fell below 60%",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	batch, err := eng.RunDetectionCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(batch))
	}
	a := batch[0]
	if a.ThresholdBreached.ID != th.ID {
		t.Fatalf("anomaly must reference the breaching threshold")
	}
	if a.Description != "approval rate fell below 60%" {
		t.Fatalf("description must be copied from the threshold")
	}
	if n.count() != 1 {
		t.Fatalf("critical anomaly must be notified")
	}

	listed := eng.ListAnomalies(models.AnomalyFilter{Severity: models.SeverityCritical})
	if len(listed) != 1 {
		t.Fatalf("list: got %d", len(listed))
	}

	if err := eng.UpdateAnomalyStatus(a.ID, models.StatusAcknowledged); err != nil {
		t.Fatalf("update status: %v", err)
	}
	st := eng.GetStats()
	if st.Total != 1 || st.ByStatus[models.StatusAcknowledged] != 1 {
		t.Fatalf("stats mismatch: %+v", st)
	}

	// later threshold edits must not rewrite the stored anomaly
	th.Value = 10
	if _, err := eng.UpsertThreshold(th); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got, _ := eng.GetAnomaly(a.ID)
	if got.ThresholdBreached.Value != 60 {
		t.Fatalf("historical anomaly mutated by threshold edit")
	}

	if err := eng.RemoveThreshold(th.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(eng.ListThresholds()) != 0 {
		t.Fatalf("threshold should be gone")
	}
}

func TestEngineSeededDefaultsCycleWithNoData(t *testing.T) {
	// empty provider: every default threshold sees zero samples, so a
	// cycle completes with no anomalies and no errors
	h := &fakeHistory{series: map[string][]float64{}}
	eng := New(h, nil, Options{SeedDefaults: true})

	if len(eng.ListThresholds()) != 7 {
		t.Fatalf("expected 7 seeded thresholds")
	}
	batch, err := eng.RunDetectionCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %d", len(batch))
	}
	if eng.GetStats().Total != 0 {
		t.Fatalf("store should be empty")
	}
}
