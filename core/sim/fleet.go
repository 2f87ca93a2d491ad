package sim

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateSpotIDs returns count identifiers of the form P01..Pnn.
func GenerateSpotIDs(prefix string, count int) []string {
	if count <= 0 {
		return nil
	}
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return ids
}

// NewFleet builds one Spot per configured id, drawing each spot's activity
// factor from cfg.Activity. All spots share the given source, so a fixed
// seed reproduces the whole fleet.
func NewFleet(cfg Config, now time.Time, src rand.Source) []*Spot {
	ids := cfg.SpotIDs()
	activity := distuv.Uniform{Min: cfg.Activity.Min, Max: cfg.Activity.Max, Src: src}
	spots := make([]*Spot, len(ids))
	for i, id := range ids {
		spots[i] = NewSpot(id, cfg, activity.Rand(), now, src)
	}
	return spots
}
