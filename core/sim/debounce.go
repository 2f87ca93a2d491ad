package sim

import "github.com/smartpark/spotsim/core/model"

// Debounce is a hysteresis filter that commits a status change only after
// a run of n consecutive same-direction detections. Every step resets the
// opposite counter, and a confirmed transition resets both, so a single
// contrary reading can never immediately undo a transition.
type Debounce struct {
	n         int
	status    model.Status
	occCount  int
	freeCount int
}

// NewDebounce creates a filter starting in the FREE state.
func NewDebounce(n int) *Debounce {
	return &Debounce{n: n}
}

// Step consumes one instantaneous detection and returns the stable status.
func (d *Debounce) Step(detectedOccupied bool) model.Status {
	if detectedOccupied {
		d.occCount++
		d.freeCount = 0
	} else {
		d.freeCount++
		d.occCount = 0
	}
	switch {
	case d.status != model.StatusOccupied && d.occCount >= d.n:
		d.status = model.StatusOccupied
		d.occCount, d.freeCount = 0, 0
	case d.status != model.StatusFree && d.freeCount >= d.n:
		d.status = model.StatusFree
		d.occCount, d.freeCount = 0, 0
	}
	return d.status
}

// Status returns the current stable status without consuming a detection.
func (d *Debounce) Status() model.Status {
	return d.status
}

// Counters reports the consecutive-detection counters. At most one of the
// two is ever non-zero.
func (d *Debounce) Counters() (occupied, free int) {
	return d.occCount, d.freeCount
}
