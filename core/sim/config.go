package sim

import (
	"fmt"
	"time"
)

// Range is a closed interval used for uniform draws.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) validate(name string) error {
	if r.Min < 0 {
		return fmt.Errorf("%s: min must be non-negative, got %g", name, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s: max %g below min %g", name, r.Max, r.Min)
	}
	return nil
}

// Config holds the simulation parameters for the whole fleet.
type Config struct {
	// Spots lists explicit spot identifiers. When empty, SpotCount ids are
	// generated from SpotPrefix (P01, P02, ...).
	Spots      []string `json:"spots"`
	SpotCount  int      `json:"spot_count"`
	SpotPrefix string   `json:"spot_prefix"`

	ThresholdCm float64 `json:"threshold_cm"`
	DebounceN   int     `json:"debounce_n"`
	TickSeconds float64 `json:"tick_seconds"`
	// Seed fixes the random source for deterministic replay. Zero means
	// seed from the wall clock at startup.
	Seed uint64 `json:"seed"`

	OccupiedDistCm Range   `json:"occupied_dist_cm"`
	FreeDistCm     Range   `json:"free_dist_cm"`
	NoiseCm        float64 `json:"noise_cm"`

	// Dwell bases in seconds, divided by each spot's activity factor.
	OccupiedDwellS Range `json:"occupied_dwell_s"`
	FreeDwellS     Range `json:"free_dwell_s"`
	Activity       Range `json:"activity"`

	QoS byte `json:"qos"`
	// Retain defaults to true so late subscribers see the current status.
	Retain *bool `json:"retain"`
}

// SetDefaults applies the stock parking-lot parameters.
func (c *Config) SetDefaults() {
	if len(c.Spots) == 0 && c.SpotCount == 0 {
		c.SpotCount = 20
	}
	if c.SpotPrefix == "" {
		c.SpotPrefix = "P"
	}
	if c.ThresholdCm == 0 {
		c.ThresholdCm = 50
	}
	if c.DebounceN == 0 {
		c.DebounceN = 4
	}
	if c.TickSeconds == 0 {
		c.TickSeconds = 1
	}
	if c.OccupiedDistCm == (Range{}) {
		c.OccupiedDistCm = Range{Min: 10, Max: 35}
	}
	if c.FreeDistCm == (Range{}) {
		c.FreeDistCm = Range{Min: 150, Max: 280}
	}
	if c.NoiseCm == 0 {
		c.NoiseCm = 2
	}
	if c.OccupiedDwellS == (Range{}) {
		c.OccupiedDwellS = Range{Min: 45, Max: 180}
	}
	if c.FreeDwellS == (Range{}) {
		c.FreeDwellS = Range{Min: 30, Max: 150}
	}
	if c.Activity == (Range{}) {
		c.Activity = Range{Min: 0.6, Max: 1.6}
	}
	if c.QoS == 0 {
		c.QoS = 1
	}
	if c.Retain == nil {
		t := true
		c.Retain = &t
	}
}

// Validate rejects malformed configuration before any spot is created.
func (c Config) Validate() error {
	if len(c.Spots) == 0 && c.SpotCount <= 0 {
		return fmt.Errorf("no spots configured")
	}
	seen := make(map[string]struct{}, len(c.Spots))
	for _, id := range c.Spots {
		if id == "" {
			return fmt.Errorf("empty spot id")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate spot id %s", id)
		}
		seen[id] = struct{}{}
	}
	if c.ThresholdCm <= 0 || c.ThresholdCm >= 1000 {
		return fmt.Errorf("threshold_cm %g outside (0, 1000)", c.ThresholdCm)
	}
	if c.DebounceN < 1 {
		return fmt.Errorf("debounce_n must be at least 1, got %d", c.DebounceN)
	}
	if c.TickSeconds <= 0 {
		return fmt.Errorf("tick_seconds must be positive, got %g", c.TickSeconds)
	}
	if c.NoiseCm < 0 {
		return fmt.Errorf("noise_cm must be non-negative, got %g", c.NoiseCm)
	}
	for _, rc := range []struct {
		name string
		r    Range
	}{
		{"occupied_dist_cm", c.OccupiedDistCm},
		{"free_dist_cm", c.FreeDistCm},
		{"occupied_dwell_s", c.OccupiedDwellS},
		{"free_dwell_s", c.FreeDwellS},
		{"activity", c.Activity},
	} {
		if err := rc.r.validate(rc.name); err != nil {
			return err
		}
	}
	if c.Activity.Min <= 0 {
		return fmt.Errorf("activity: min must be positive, got %g", c.Activity.Min)
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// Tick returns the sweep interval as a duration.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

// SpotIDs resolves the configured spot identifiers in sweep order.
func (c Config) SpotIDs() []string {
	if len(c.Spots) > 0 {
		return c.Spots
	}
	return GenerateSpotIDs(c.SpotPrefix, c.SpotCount)
}

func (c Config) retain() bool {
	return c.Retain == nil || *c.Retain
}
