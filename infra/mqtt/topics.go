package mqtt

// StatusTopic returns the hierarchical status topic for a spot.
func StatusTopic(prefix, spotID string) string {
	return prefix + "/spots/" + spotID + "/status"
}

// StatusWildcard returns the filter matching every spot's status topic.
func StatusWildcard(prefix string) string {
	return StatusTopic(prefix, "+")
}

// AvailabilityTopic returns the simulator liveness topic used for the LWT.
func AvailabilityTopic(prefix, clientID string) string {
	return prefix + "/sensors/" + clientID + "/availability"
}
