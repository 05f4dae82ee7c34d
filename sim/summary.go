package sim

import "fmt"

// Summary condenses one scenario's per-window metrics for
// cross-scenario comparison.
type Summary struct {
	Scenario         string
	ProcessedTPSMean float64
	LatencyMSMean    float64
	BacklogMax       float64
	DroppedSum       float64
	PolicyFiredRatio float64
}

// Summarize computes scenario-level aggregates. Safe on empty input
// (returns zero-valued fields).
func Summarize(scenario string, metrics []WindowMetrics) Summary {
	s := Summary{Scenario: scenario}
	if len(metrics) == 0 {
		return s
	}
	fired := 0
	for _, m := range metrics {
		s.ProcessedTPSMean += m.ProcessedTPS
		s.LatencyMSMean += m.LatencyMS
		s.DroppedSum += m.Dropped
		if m.Backlog > s.BacklogMax {
			s.BacklogMax = m.Backlog
		}
		if m.PolicyFired {
			fired++
		}
	}
	n := float64(len(metrics))
	s.ProcessedTPSMean /= n
	s.LatencyMSMean /= n
	s.PolicyFiredRatio = float64(fired) / n
	return s
}

// Print displays one scenario's aggregates at the end of a run.
func (s Summary) Print() {
	fmt.Printf("=== Scenario %s ===\n", s.Scenario)
	fmt.Printf("Mean processed TPS   : %.2f\n", s.ProcessedTPSMean)
	fmt.Printf("Mean latency         : %.2f ms\n", s.LatencyMSMean)
	fmt.Printf("Peak backlog         : %.2f\n", s.BacklogMax)
	fmt.Printf("Total dropped        : %.2f\n", s.DroppedSum)
	fmt.Printf("Policy fired ratio   : %.3f\n", s.PolicyFiredRatio)
}
