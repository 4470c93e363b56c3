package models

// Requests for the anomaly/threshold HTTP endpoints. Defined in domain for
// consistency and reuse.

type ListAnomaliesRequest struct {
	Metric   string `query:"metric" json:"metric"`
	Severity string `query:"severity" json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=new acknowledged resolved ignored"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
}

type UpdateAnomalyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new acknowledged resolved ignored"`
}

type UpsertThresholdRequest struct {
	ID          string  `json:"id"`
	MetricName  string  `json:"metric_name" validate:"required"`
	Type        string  `json:"threshold_type" validate:"required,oneof=upper lower change_rate deviation"`
	Value       float64 `json:"threshold_value"`
	Period      string  `json:"comparison_period" default:"day" validate:"oneof=hour day week month"`
	Severity    string  `json:"severity" default:"medium" validate:"oneof=low medium high critical"`
	Enabled     *bool   `json:"enabled"`
	Description string  `json:"description"`
}

// Threshold converts the request into a domain threshold. Enabled defaults
// to true when omitted.
func (r *UpsertThresholdRequest) Threshold() Threshold {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return Threshold{
		ID:          r.ID,
		MetricName:  r.MetricName,
		Type:        ThresholdType(r.Type),
		Value:       r.Value,
		Period:      NormalizeGranularity(r.Period),
		Severity:    Severity(r.Severity),
		Enabled:     enabled,
		Description: r.Description,
	}
}
