package models

// ThresholdType selects the comparison strategy the evaluator applies.
//
// The meaning of Threshold.Value depends on the type: an absolute bound for
// upper/lower, a percentage change for change_rate, and a standard-deviation
// multiplier for deviation. The dual meaning is deliberate and must not be
// unified.
type ThresholdType string

const (
	ThresholdUpper      ThresholdType = "upper"
	ThresholdLower      ThresholdType = "lower"
	ThresholdChangeRate ThresholdType = "change_rate"
	ThresholdDeviation  ThresholdType = "deviation"
)

// Severity ranks how urgent a breach of the threshold is. Critical anomalies
// are pushed to the alert notifier synchronously within the detection cycle.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Threshold is one detection rule for a single metric time series.
type Threshold struct {
	ID          string        `json:"id"`
	MetricName  string        `json:"metric_name"`
	Type        ThresholdType `json:"threshold_type"`
	Value       float64       `json:"threshold_value"`
	Period      Granularity   `json:"comparison_period"`
	Severity    Severity      `json:"severity"`
	Enabled     bool          `json:"enabled"`
	Description string        `json:"description"`
}

// IsValidThresholdType reports whether t is a supported comparison strategy.
func IsValidThresholdType(t ThresholdType) bool {
	switch t {
	case ThresholdUpper, ThresholdLower, ThresholdChangeRate, ThresholdDeviation:
		return true
	default:
		return false
	}
}

// IsValidSeverity reports whether s is a supported severity rank.
func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}
