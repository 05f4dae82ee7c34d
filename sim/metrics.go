package sim

// WindowMetrics is the simulator output for one window. Immutable once
// emitted; Simulate returns them ordered by WindowID.
type WindowMetrics struct {
	WindowID     int64
	Offered      float64 // offered load after traffic-feature inflation
	Admitted     float64 // accepted load surviving the drop share
	ProcessedTPS float64 // load actually served this window
	Backlog      float64 // carried-over load after this window's processing
	LatencyMS    float64 // modeled latency under the post-update backlog
	Dropped      float64 // accepted load discarded by active mitigations
	PolicyFired  bool    // whether any rule fired for this window
	OverheadMult float64 // consensus overhead multiplier in effect
}
