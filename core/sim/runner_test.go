package sim

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"github.com/smartpark/spotsim/core/metrics"
	"github.com/smartpark/spotsim/core/model"
	"github.com/smartpark/spotsim/infra/mqtt"
)

// deterministicConfig removes all randomness from readings: occupied spots
// always read 20 cm, free spots always 200 cm, and the world never flips
// on its own.
func deterministicConfig() Config {
	cfg := testConfig()
	cfg.OccupiedDistCm = Range{Min: 20, Max: 20}
	cfg.FreeDistCm = Range{Min: 200, Max: 200}
	cfg.NoiseCm = 0
	cfg.OccupiedDwellS = Range{Min: 1e6, Max: 1e6}
	cfg.FreeDwellS = Range{Min: 1e6, Max: 1e6}
	return cfg
}

func newTestRunner(cfg Config, spots []*Spot, sink *mqtt.MockPublisher, rec metrics.MetricsSink) *Runner {
	topic := func(id string) string { return "lot/spots/" + id + "/status" }
	return NewRunner(cfg, spots, sink, topic, nil, rec, nil)
}

func TestRunnerPublishesInitialStatus(t *testing.T) {
	cfg := deterministicConfig()
	now := time.Unix(1_700_000_000, 0)
	sp := NewSpot("P01", cfg, 1.0, now, rand.NewSource(1))
	sink := mqtt.NewMockPublisher()
	r := newTestRunner(cfg, []*Spot{sp}, sink, nil)

	r.Sweep(now)
	msgs := sink.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 initial publish, got %d", len(msgs))
	}
	if msgs[0].Topic != "lot/spots/P01/status" {
		t.Fatalf("unexpected topic %s", msgs[0].Topic)
	}
	if msgs[0].QoS != 1 || !msgs[0].Retain {
		t.Fatalf("expected retained QoS 1, got qos=%d retain=%v", msgs[0].QoS, msgs[0].Retain)
	}

	var ev model.StatusEvent
	if err := json.Unmarshal(msgs[0].Payload, &ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.SpotID != "P01" || ev.Status != model.StatusFree {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.DistanceCm != 200 || ev.ThresholdCm != 50 || ev.DebounceN != 4 {
		t.Fatalf("unexpected event fields %+v", ev)
	}
}

func TestRunnerChangeGating(t *testing.T) {
	cfg := deterministicConfig()
	now := time.Unix(1_700_000_000, 0)
	sp := NewSpot("P01", cfg, 1.0, now, rand.NewSource(1))
	sink := mqtt.NewMockPublisher()
	r := newTestRunner(cfg, []*Spot{sp}, sink, nil)

	for i := 0; i < 10; i++ {
		r.Sweep(now.Add(time.Duration(i) * time.Second))
	}
	if got := len(sink.Messages()); got != 1 {
		t.Fatalf("unchanged status published %d times, want 1", got)
	}
}

func TestRunnerPublishesOnDebouncedTransition(t *testing.T) {
	cfg := deterministicConfig()
	now := time.Unix(1_700_000_000, 0)
	sp := NewSpot("P01", cfg, 1.0, now, rand.NewSource(1))
	sink := mqtt.NewMockPublisher()
	r := newTestRunner(cfg, []*Spot{sp}, sink, nil)

	r.Sweep(now) // initial FREE publish

	// A car appears. Four sweeps of occupied detections are needed before
	// the debounced status flips, and only the fourth publishes.
	sp.world.occupied = true
	for i := 1; i <= 3; i++ {
		r.Sweep(now.Add(time.Duration(i) * time.Second))
		if got := len(sink.Messages()); got != 1 {
			t.Fatalf("sweep %d: premature publish (%d messages)", i, got)
		}
	}
	r.Sweep(now.Add(4 * time.Second))
	msgs := sink.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected transition publish on 4th detection, got %d messages", len(msgs))
	}
	var ev model.StatusEvent
	if err := json.Unmarshal(msgs[1].Payload, &ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.Status != model.StatusOccupied || ev.DistanceCm != 20 {
		t.Fatalf("unexpected transition event %+v", ev)
	}
}

func TestRunnerSweepOrderDeterministic(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Spots = []string{"P03", "P01", "P02"}
	now := time.Unix(1_700_000_000, 0)
	spots := NewFleet(cfg, now, rand.NewSource(2))
	sink := mqtt.NewMockPublisher()
	r := newTestRunner(cfg, spots, sink, nil)

	r.Sweep(now)
	msgs := sink.Messages()
	want := []string{"lot/spots/P03/status", "lot/spots/P01/status", "lot/spots/P02/status"}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d publishes, got %d", len(want), len(msgs))
	}
	for i, w := range want {
		if msgs[i].Topic != w {
			t.Fatalf("publish %d: got %s want %s (configured order must be preserved)", i, msgs[i].Topic, w)
		}
	}
}

type countingSink struct {
	changes  int
	sweeps   int
	readings int
	occupied int
}

func (c *countingSink) RecordStatusChange(metrics.StatusChange) error { c.changes++; return nil }
func (c *countingSink) RecordSweep(ev metrics.SweepEvent) error {
	c.sweeps++
	c.occupied = ev.Occupied
	return nil
}
func (c *countingSink) RecordReading(metrics.Reading) error { c.readings++; return nil }

func TestRunnerRecordsMetrics(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Spots = []string{"P01", "P02"}
	now := time.Unix(1_700_000_000, 0)
	spots := NewFleet(cfg, now, rand.NewSource(4))
	spots[1].world.occupied = true
	sink := mqtt.NewMockPublisher()
	rec := &countingSink{}
	r := newTestRunner(cfg, spots, sink, rec)

	for i := 0; i < 4; i++ {
		r.Sweep(now.Add(time.Duration(i) * time.Second))
	}
	if rec.sweeps != 4 {
		t.Fatalf("expected 4 sweep records, got %d", rec.sweeps)
	}
	if rec.readings != 8 {
		t.Fatalf("expected 8 reading records, got %d", rec.readings)
	}
	// Initial FREE for both spots plus P02's confirmed OCCUPIED.
	if rec.changes != 3 {
		t.Fatalf("expected 3 status change records, got %d", rec.changes)
	}
	if rec.occupied != 1 {
		t.Fatalf("expected 1 occupied spot in final sweep, got %d", rec.occupied)
	}
}

func TestRunnerPublishFailureKeepsGoing(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Spots = []string{"P01", "P02"}
	now := time.Unix(1_700_000_000, 0)
	spots := NewFleet(cfg, now, rand.NewSource(5))
	sink := mqtt.NewMockPublisher()
	sink.FailTopics["lot/spots/P01/status"] = true
	r := newTestRunner(cfg, spots, sink, nil)

	r.Sweep(now)
	msgs := sink.Messages()
	if len(msgs) != 1 || msgs[0].Topic != "lot/spots/P02/status" {
		t.Fatalf("expected P02 to publish despite P01 failure, got %+v", msgs)
	}
	// No buffering: the lost event is not replayed on the next sweep.
	r.Sweep(now.Add(time.Second))
	if got := len(sink.Messages()); got != 1 {
		t.Fatalf("lost event was replayed: %d messages", got)
	}
}

func TestRunnerStopsBetweenSweepsAndClosesSinkOnce(t *testing.T) {
	cfg := deterministicConfig()
	cfg.TickSeconds = 0.005
	now := time.Unix(1_700_000_000, 0)
	sp := NewSpot("P01", cfg, 1.0, now, rand.NewSource(6))
	sink := mqtt.NewMockPublisher()
	r := newTestRunner(cfg, []*Spot{sp}, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
	r.Close() // second close must be a no-op
	if got := sink.CloseCount(); got != 1 {
		t.Fatalf("sink closed %d times, want exactly 1", got)
	}
}
