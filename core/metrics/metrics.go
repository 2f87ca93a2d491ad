package metrics

import "time"

// StatusChange records one confirmed occupancy transition.
type StatusChange struct {
	SpotID     string
	Status     string
	DistanceCm float64
	Time       time.Time
}

// SweepEvent summarizes one full pass over the fleet.
type SweepEvent struct {
	Spots    int
	Changes  int
	Occupied int
	Time     time.Time
}

// Reading captures a single raw sensor measurement.
type Reading struct {
	SpotID     string
	DistanceCm float64
	Detected   bool
	Time       time.Time
}

// MetricsSink records simulation events for observability purposes.
type MetricsSink interface {
	RecordStatusChange(ev StatusChange) error
	RecordSweep(ev SweepEvent) error
}

// ReadingRecorder is implemented by sinks able to record every raw reading,
// not just confirmed transitions.
type ReadingRecorder interface {
	RecordReading(ev Reading) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStatusChange(StatusChange) error { return nil }
func (NopSink) RecordSweep(SweepEvent) error          { return nil }
func (NopSink) RecordReading(Reading) error           { return nil }
