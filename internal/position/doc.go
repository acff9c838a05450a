// Package position extrapolates the playback position between authoritative status updates.
//
// An [Estimator] is seeded with a [Snapshot] (elapsed seconds observed at a wall-clock instant,
// plus the track length when known) and advances a displayed value once per second without
// asking the server. The next snapshot replaces the previous one through [Estimator.Start].
//
// Lifecycle:
//
//	IDLE --Start--> RUNNING --Stop or length reached--> IDLE
//
// At most one tick is scheduled at any time; Start cancels the previous tick before scheduling
// its own, and ticks from a replaced run are ignored.
package position
