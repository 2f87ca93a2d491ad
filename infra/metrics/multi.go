package metrics

import coremetrics "github.com/smartpark/spotsim/core/metrics"

// MultiSink fans simulation events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStatusChange forwards the transition to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordStatusChange(ev coremetrics.StatusChange) error {
	for _, s := range m.Sinks {
		if err := s.RecordStatusChange(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSweep forwards the sweep summary to all sinks.
func (m *MultiSink) RecordSweep(ev coremetrics.SweepEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSweep(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordReading forwards raw readings to sinks that support them.
func (m *MultiSink) RecordReading(ev coremetrics.Reading) error {
	for _, s := range m.Sinks {
		if rr, ok := s.(coremetrics.ReadingRecorder); ok {
			if err := rr.RecordReading(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
