package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"PromoPulse/internal/domain/models"
)

type recordingNotifier struct {
	calls int
	err   error
}

func (n *recordingNotifier) Notify(context.Context, *models.DetectedAnomaly) error {
	n.calls++
	return n.err
}

func TestMultiNotifierRunsEveryChannel(t *testing.T) {
	a := &recordingNotifier{err: errors.New("channel one down")}
	b := &recordingNotifier{}
	m := NewMultiNotifier(a, b)

	anomaly := &models.DetectedAnomaly{
		ID:         "x",
		MetricName: "revenue_per_campaign",
		DetectedAt: time.Now(),
		Severity:   models.SeverityCritical,
		Status:     models.StatusNew,
	}
	err := m.Notify(context.Background(), anomaly)
	if err == nil {
		t.Fatalf("expected first error to be returned")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("all channels must run despite failures: a=%d b=%d", a.calls, b.calls)
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogAlertNotifier(nil)
	if err := n.Notify(context.Background(), &models.DetectedAnomaly{MetricName: "m"}); err != nil {
		t.Fatalf("log notifier must not fail: %v", err)
	}
}
