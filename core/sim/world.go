package sim

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// World tracks the latent ground truth for a single spot: whether a car is
// physically present and when the next arrival or departure is due.
type World struct {
	occupied       bool
	activity       float64
	nextTransition time.Time

	occupiedDwell distuv.Uniform
	freeDwell     distuv.Uniform
}

// NewWorld creates a world that starts free and is armed for its first
// arrival. The activity factor scales down every dwell duration, so busier
// spots flip more often.
func NewWorld(cfg Config, activity float64, now time.Time, src rand.Source) *World {
	w := &World{
		activity:      activity,
		occupiedDwell: distuv.Uniform{Min: cfg.OccupiedDwellS.Min, Max: cfg.OccupiedDwellS.Max, Src: src},
		freeDwell:     distuv.Uniform{Min: cfg.FreeDwellS.Min, Max: cfg.FreeDwellS.Max, Src: src},
	}
	w.nextTransition = now.Add(w.dwell(false))
	return w
}

func (w *World) dwell(occupied bool) time.Duration {
	base := w.freeDwell.Rand()
	if occupied {
		base = w.occupiedDwell.Rand()
	}
	return time.Duration(base / w.activity * float64(time.Second))
}

// Advance flips the ground truth once its dwell time has elapsed and
// immediately re-arms the next transition. It returns the current occupancy.
func (w *World) Advance(now time.Time) bool {
	if !now.Before(w.nextTransition) {
		w.occupied = !w.occupied
		w.nextTransition = now.Add(w.dwell(w.occupied))
	}
	return w.occupied
}
