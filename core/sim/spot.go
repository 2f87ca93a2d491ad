package sim

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/smartpark/spotsim/core/model"
)

// Spot bundles the world model, sensor and debounce filter for one
// monitored parking location. A Spot is owned exclusively by the runner
// that drives it and is never shared across goroutines.
type Spot struct {
	ID string
	// Activity is the spot's immutable activity factor.
	Activity float64

	world     *World
	sensor    *Sensor
	filter    *Debounce
	threshold float64
}

// NewSpot creates a spot with the given activity factor, starting free.
func NewSpot(id string, cfg Config, activity float64, now time.Time, src rand.Source) *Spot {
	return &Spot{
		ID:        id,
		Activity:  activity,
		world:     NewWorld(cfg, activity, now, src),
		sensor:    NewSensor(cfg, src),
		filter:    NewDebounce(cfg.DebounceN),
		threshold: cfg.ThresholdCm,
	}
}

// Sample runs one read/update cycle: advance the world, measure, threshold
// and debounce. It returns the raw reading and the stable status.
func (s *Spot) Sample(now time.Time) (distanceCm float64, status model.Status) {
	occupied := s.world.Advance(now)
	d := s.sensor.Measure(occupied)
	return d, s.filter.Step(Detect(d, s.threshold))
}

// Status returns the current debounced status.
func (s *Spot) Status() model.Status {
	return s.filter.Status()
}
