package engine

import "errors"

var (
	// ErrThresholdNotFound is returned for mutations against unknown
	// threshold ids.
	ErrThresholdNotFound = errors.New("threshold not found")
	// ErrAnomalyNotFound is returned for status updates against unknown
	// anomaly ids.
	ErrAnomalyNotFound = errors.New("anomaly not found")
)
