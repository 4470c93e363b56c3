package models

// Granularity is the sampling period of a metric history series.
type Granularity string

const (
	GranHour  Granularity = "hour"
	GranDay   Granularity = "day"
	GranWeek  Granularity = "week"
	GranMonth Granularity = "month"
)

// IsValidGranularity returns true if g is a supported sampling period.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case GranHour, GranDay, GranWeek, GranMonth:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the default sampling period.
func DefaultGranularity() Granularity { return GranDay }

// NormalizeGranularity converts a raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}
