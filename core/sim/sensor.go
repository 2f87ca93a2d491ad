package sim

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sensor synthesizes noisy ultrasonic distance readings for one spot.
type Sensor struct {
	occupiedDist distuv.Uniform
	freeDist     distuv.Uniform
	noise        distuv.Uniform
}

// NewSensor builds a sensor drawing from the configured distance ranges.
func NewSensor(cfg Config, src rand.Source) *Sensor {
	return &Sensor{
		occupiedDist: distuv.Uniform{Min: cfg.OccupiedDistCm.Min, Max: cfg.OccupiedDistCm.Max, Src: src},
		freeDist:     distuv.Uniform{Min: cfg.FreeDistCm.Min, Max: cfg.FreeDistCm.Max, Src: src},
		noise:        distuv.Uniform{Min: -cfg.NoiseCm, Max: cfg.NoiseCm, Src: src},
	}
}

// Measure returns a simulated distance reading in centimeters, clamped to
// be non-negative.
func (s *Sensor) Measure(occupied bool) float64 {
	base := s.freeDist.Rand()
	if occupied {
		base = s.occupiedDist.Rand()
	}
	d := base + s.noise.Rand()
	if d < 0 {
		return 0
	}
	return d
}
