package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hcis-sim/hcis-sim/sim/policy"
	"github.com/hcis-sim/hcis-sim/sim/workload"
)

// State is the single quantity the simulator carries between windows:
// admitted load that could not be processed yet. Zero-valued before
// the first window; owned by exactly one scenario run.
type State struct {
	Backlog float64
}

// step advances the congestion model by one window. Pure: the previous
// State goes in, the next State and the window's metrics come out.
func step(st State, rec policy.Annotated, effects map[string]policy.Effect, p Params) (State, WindowMetrics) {
	f2 := math.Max(0, rec.Feature(workload.FeatNewMMSIRate))
	f3 := math.Max(0, rec.Feature(workload.FeatMessageBurstiness))
	f4 := rec.Feature(workload.FeatPositionJumpRate)

	// Offered load grows with message burstiness (log-damped, defined at
	// zero) and linearly with the new-identity rate.
	offered := p.BaseOfferedPerWindow * (1 + 0.8*math.Log1p(f3) + 1.2*f2)

	// Position jumps inflate consensus overhead by up to 60%.
	overheadMult := 1 + 0.6*math.Min(1, math.Max(0, f4))

	admissionMult := 1.0
	dropShare := 0.0
	for _, a := range rec.Actions {
		eff, ok := effects[a]
		if !ok {
			continue
		}
		if eff.AdmissionRateMult != nil {
			admissionMult *= *eff.AdmissionRateMult
		}
		if eff.ConsensusOverheadMult != nil {
			overheadMult *= *eff.ConsensusOverheadMult
		}
		// Mitigations target overlapping traffic: the strongest drop
		// share wins, shares are never summed.
		if eff.DropNewMMSIMult != nil {
			dropShare = math.Max(dropShare, 1-*eff.DropNewMMSIMult)
		}
		if eff.DropSuspiciousMult != nil {
			dropShare = math.Max(dropShare, 1-*eff.DropSuspiciousMult)
		}
	}

	if overheadMult < 1e-6 {
		logrus.Warnf("[window %d] overhead multiplier %g clamped to 1e-6", rec.WindowID, overheadMult)
	}
	capacity := p.BaseCapacityTPS / math.Max(1e-6, overheadMult)

	accepted := offered * admissionMult
	dropped := accepted * dropShare
	admitted := math.Max(0, accepted-dropped)

	// Capacity serves aged-in backlog first, then new admitted load;
	// the unserved remainder carries into the next window.
	processed := math.Min(capacity, admitted+st.Backlog)
	backlog := math.Max(0, st.Backlog+admitted-processed)

	latency := p.BaseLatencyMS * (1 + 0.45*math.Log1p(backlog/math.Max(1, p.BaseOfferedPerWindow)))

	return State{Backlog: backlog}, WindowMetrics{
		WindowID:     rec.WindowID,
		Offered:      offered,
		Admitted:     admitted,
		ProcessedTPS: processed,
		Backlog:      backlog,
		LatencyMS:    latency,
		Dropped:      dropped,
		PolicyFired:  rec.Fired,
		OverheadMult: overheadMult,
	}
}

// Simulate folds the congestion model over the annotated stream in
// strictly increasing window order, producing exactly one WindowMetrics
// per input record. Streams with duplicate or out-of-order window ids
// fail with a DataError before any output is produced: the backlog
// recurrence is meaningless on them.
func Simulate(records []policy.Annotated, effects map[string]policy.Effect, p Params) ([]WindowMetrics, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(records); i++ {
		if records[i].WindowID == records[i-1].WindowID {
			return nil, &DataError{WindowID: records[i].WindowID, Reason: "duplicate window_id"}
		}
		if records[i].WindowID < records[i-1].WindowID {
			return nil, &DataError{WindowID: records[i].WindowID, Reason: "window_id out of order"}
		}
	}

	out := make([]WindowMetrics, 0, len(records))
	st := State{}
	for _, rec := range records {
		var m WindowMetrics
		st, m = step(st, rec, effects, p)
		out = append(out, m)
	}
	return out, nil
}
