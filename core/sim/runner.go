package sim

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/smartpark/spotsim/core/logger"
	"github.com/smartpark/spotsim/core/metrics"
	"github.com/smartpark/spotsim/core/model"
	coremqtt "github.com/smartpark/spotsim/core/mqtt"
	"github.com/smartpark/spotsim/internal/eventbus"
)

// TopicFunc builds the publish topic for a spot id. The topic namespace is
// deployment configuration, so the runner never constructs topics itself.
type TopicFunc func(spotID string) string

// StatusChanged is published on the internal event bus for every event
// handed to the sink.
type StatusChanged struct {
	Event model.StatusEvent
}

// Runner drives the whole fleet on a fixed tick. Each sweep processes the
// spots in configured order and hands an event to the sink only when a
// spot's debounced status differs from the last value published for it.
type Runner struct {
	cfg   Config
	spots []*Spot
	sink  coremqtt.Publisher
	topic TopicFunc
	bus   eventbus.EventBus
	rec   metrics.MetricsSink
	log   logger.Logger
	now   func() time.Time

	// lastPublished holds the last status handed to the sink per spot id.
	// A spot absent from the map has never been published, so the first
	// sweep always emits its initial status.
	lastPublished map[string]model.Status

	closeOnce sync.Once
}

// NewRunner wires a fleet to its sink. The bus may be nil when no
// in-process subscribers are wanted; rec and log fall back to no-ops.
func NewRunner(cfg Config, spots []*Spot, sink coremqtt.Publisher, topic TopicFunc, bus eventbus.EventBus, rec metrics.MetricsSink, log logger.Logger) *Runner {
	if rec == nil {
		rec = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Runner{
		cfg:           cfg,
		spots:         spots,
		sink:          sink,
		topic:         topic,
		bus:           bus,
		rec:           rec,
		log:           log,
		now:           time.Now,
		lastPublished: make(map[string]model.Status, len(spots)),
	}
}

// Run sweeps the fleet until ctx is cancelled. Cancellation is observed
// between sweeps, never mid-sweep, and the sink is closed before Run
// returns.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Infof("simulating %d spots every %s (threshold %.1f cm, debounce %d)",
		len(r.spots), r.cfg.Tick(), r.cfg.ThresholdCm, r.cfg.DebounceN)
	ticker := time.NewTicker(r.cfg.Tick())
	defer ticker.Stop()
	r.Sweep(r.now())
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case t := <-ticker.C:
			r.Sweep(t)
		}
	}
}

// Sweep processes every spot once. Exported so tests can drive the loop
// with explicit timestamps.
func (r *Runner) Sweep(now time.Time) {
	changes := 0
	occupied := 0
	for _, sp := range r.spots {
		d, status := sp.Sample(now)
		if status == model.StatusOccupied {
			occupied++
		}
		if rr, ok := r.rec.(metrics.ReadingRecorder); ok {
			_ = rr.RecordReading(metrics.Reading{
				SpotID:     sp.ID,
				DistanceCm: d,
				Detected:   Detect(d, r.cfg.ThresholdCm),
				Time:       now,
			})
		}
		last, published := r.lastPublished[sp.ID]
		if published && last == status {
			continue
		}
		r.lastPublished[sp.ID] = status
		r.publish(sp.ID, status, d, now)
		changes++
	}
	if err := r.rec.RecordSweep(metrics.SweepEvent{
		Spots:    len(r.spots),
		Changes:  changes,
		Occupied: occupied,
		Time:     now,
	}); err != nil {
		r.log.Warnf("record sweep: %v", err)
	}
}

// publish hands one event to the sink. Failures are logged and dropped:
// the transport owns retries and the runner keeps computing regardless.
func (r *Runner) publish(spotID string, status model.Status, distanceCm float64, now time.Time) {
	ev := model.NewStatusEvent(spotID, status, distanceCm, r.cfg.ThresholdCm, r.cfg.DebounceN, now)
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Errorf("encode event for %s: %v", spotID, err)
		return
	}
	if err := r.sink.Publish(r.topic(spotID), payload, r.cfg.QoS, r.cfg.retain()); err != nil {
		r.log.Errorf("publish %s: %v", spotID, err)
	}
	if r.bus != nil {
		r.bus.Publish(StatusChanged{Event: ev})
	}
	if err := r.rec.RecordStatusChange(metrics.StatusChange{
		SpotID:     spotID,
		Status:     status.String(),
		DistanceCm: ev.DistanceCm,
		Time:       now,
	}); err != nil {
		r.log.Warnf("record status change: %v", err)
	}
}

// Close releases the sink. Safe to call more than once and concurrently
// with a cancelled Run.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.sink.Close()
	})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
