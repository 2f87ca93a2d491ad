package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/smartpark/spotsim/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	changes  *prometheus.CounterVec
	occupied prometheus.Gauge
	distance *prometheus.HistogramVec
}

// NewPromSink registers the simulation metrics on the default Prometheus
// registerer. The exposition server is started separately with
// StartPromServer.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spot_status_changes_total",
		Help: "Total number of confirmed spot status transitions",
	}, []string{"spot_id", "status"})
	occupied := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "parking_spots_occupied",
		Help: "Number of spots whose debounced status is OCCUPIED",
	})
	distance := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sensor_distance_cm",
		Help:    "Raw simulated distance readings",
		Buckets: prometheus.LinearBuckets(0, 25, 13),
	}, []string{"spot_id"})

	if err := reg.Register(changes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			changes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(occupied); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			occupied = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(distance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			distance = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{changes: changes, occupied: occupied, distance: distance}, nil
}

// RecordStatusChange increments the transition counter.
func (s *PromSink) RecordStatusChange(ev coremetrics.StatusChange) error {
	s.changes.WithLabelValues(ev.SpotID, ev.Status).Inc()
	return nil
}

// RecordSweep updates the occupancy gauge after a full pass over the fleet.
func (s *PromSink) RecordSweep(ev coremetrics.SweepEvent) error {
	s.occupied.Set(float64(ev.Occupied))
	return nil
}

// RecordReading observes the raw distance histogram.
func (s *PromSink) RecordReading(ev coremetrics.Reading) error {
	s.distance.WithLabelValues(ev.SpotID).Observe(ev.DistanceCm)
	return nil
}
