package model

import (
	"fmt"
	"math"
	"time"
)

// Status is the debounced occupancy state of a parking spot.
type Status int

const (
	StatusFree Status = iota
	StatusOccupied
)

func (s Status) String() string {
	if s == StatusOccupied {
		return "OCCUPIED"
	}
	return "FREE"
}

// MarshalJSON encodes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes the wire string back into a Status.
func (s *Status) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"FREE"`:
		*s = StatusFree
	case `"OCCUPIED"`:
		*s = StatusOccupied
	default:
		return fmt.Errorf("unknown status %s", b)
	}
	return nil
}

// StatusEvent is the record published on a confirmed status change.
type StatusEvent struct {
	SpotID      string  `json:"id"`
	Status      Status  `json:"status"`
	DistanceCm  float64 `json:"distance_cm"`
	ThresholdCm float64 `json:"threshold_cm"`
	DebounceN   int     `json:"debounce_n"`
	Timestamp   string  `json:"ts"`
}

// NewStatusEvent builds the wire record for a transition. The distance is
// rounded to one decimal and the timestamp truncated to second precision.
func NewStatusEvent(spotID string, status Status, distanceCm, thresholdCm float64, debounceN int, ts time.Time) StatusEvent {
	return StatusEvent{
		SpotID:      spotID,
		Status:      status,
		DistanceCm:  math.Round(distanceCm*10) / 10,
		ThresholdCm: thresholdCm,
		DebounceN:   debounceN,
		Timestamp:   ts.Truncate(time.Second).Format(time.RFC3339),
	}
}
