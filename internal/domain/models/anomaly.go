package models

import "time"

// AnomalyStatus tracks the triage state of a detected anomaly. Statuses are
// mutated only by explicit operator action; there are no automatic
// transitions and any status is reachable from any other.
type AnomalyStatus string

const (
	StatusNew          AnomalyStatus = "new"
	StatusAcknowledged AnomalyStatus = "acknowledged"
	StatusResolved     AnomalyStatus = "resolved"
	StatusIgnored      AnomalyStatus = "ignored"
)

// IsValidAnomalyStatus reports whether s is a supported triage status.
func IsValidAnomalyStatus(s AnomalyStatus) bool {
	switch s {
	case StatusNew, StatusAcknowledged, StatusResolved, StatusIgnored:
		return true
	default:
		return false
	}
}

// DetectedAnomaly is a single threshold breach.
//
// ThresholdBreached is a value snapshot of the rule that fired, so later
// edits to the registry never retroactively alter historical anomalies.
type DetectedAnomaly struct {
	ID                  string        `json:"id"`
	MetricName          string        `json:"metric_name"`
	CurrentValue        float64       `json:"current_value"`
	ExpectedValue       float64       `json:"expected_value"`
	DeviationPercentage float64       `json:"deviation_percentage"`
	ThresholdBreached   Threshold     `json:"threshold_breached"`
	DetectedAt          time.Time     `json:"detected_at"`
	Severity            Severity      `json:"severity"`
	Status              AnomalyStatus `json:"status"`
	Description         string        `json:"description"`
}

// AnomalyStats is an on-demand aggregation over the anomaly store.
// BySeverity and ByStatus are two orthogonal partitions of Total.
type AnomalyStats struct {
	Total      int                   `json:"total"`
	BySeverity map[Severity]int      `json:"by_severity"`
	ByStatus   map[AnomalyStatus]int `json:"by_status"`
}

// AnomalyFilter narrows ListAnomalies results. Zero values match everything.
type AnomalyFilter struct {
	MetricName string
	Severity   Severity
	Status     AnomalyStatus
	From       time.Time
	To         time.Time
}

// Matches reports whether a passes every set filter field.
func (f AnomalyFilter) Matches(a *DetectedAnomaly) bool {
	if f.MetricName != "" && a.MetricName != f.MetricName {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && a.DetectedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.DetectedAt.After(f.To) {
		return false
	}
	return true
}
