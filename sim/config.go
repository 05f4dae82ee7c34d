package sim

import "fmt"

// Params groups the congestion model base parameters.
type Params struct {
	BaseCapacityTPS      float64 `yaml:"base_capacity_tps"`       // consensus processing capacity at 1.0 overhead
	BaseOfferedPerWindow float64 `yaml:"base_offered_per_window"` // nominal offered load per window
	BaseLatencyMS        float64 `yaml:"base_latency_ms"`         // latency at zero backlog
}

// DefaultParams returns the stock calibration of the congestion model.
func DefaultParams() Params {
	return Params{
		BaseCapacityTPS:      180.0,
		BaseOfferedPerWindow: 150.0,
		BaseLatencyMS:        120.0,
	}
}

// Validate checks that every base parameter is positive.
func (p Params) Validate() error {
	if p.BaseCapacityTPS <= 0 {
		return fmt.Errorf("base_capacity_tps must be positive, got %f", p.BaseCapacityTPS)
	}
	if p.BaseOfferedPerWindow <= 0 {
		return fmt.Errorf("base_offered_per_window must be positive, got %f", p.BaseOfferedPerWindow)
	}
	if p.BaseLatencyMS <= 0 {
		return fmt.Errorf("base_latency_ms must be positive, got %f", p.BaseLatencyMS)
	}
	return nil
}
