// Package sim contains the parking-spot simulation core: a latent world
// model with randomized dwell times, a noisy distance sensor, a threshold
// detector and the hysteresis filter that turns flickery detections into a
// stable occupancy status. The Runner drives all spots on a fixed tick and
// publishes an event to the configured sink only on confirmed transitions.
package sim
