package sim

// Detect converts a raw distance reading into an instantaneous occupancy
// detection. The comparison is strictly below threshold: a reading exactly
// at the threshold counts as free.
func Detect(distanceCm, thresholdCm float64) bool {
	return distanceCm < thresholdCm
}
