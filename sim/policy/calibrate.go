package policy

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hcis-sim/hcis-sim/sim/workload"
)

// CalibrateThresholds fits each feature's boundary as a high quantile
// of its values over a clean (attack-free) feature stream. Windows
// above the boundary are rare under normal traffic, so rules comparing
// against it fire only under anomalous load.
func CalibrateThresholds(records []workload.FeatureRecord, features []string, q float64) (map[string]float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("calibration needs a non-empty feature stream")
	}
	if q <= 0 || q >= 1 {
		return nil, fmt.Errorf("calibration quantile must be in (0, 1), got %v", q)
	}
	thresholds := make(map[string]float64, len(features))
	for _, feat := range features {
		values := make([]float64, len(records))
		for i, rec := range records {
			values[i] = rec.Feature(feat)
		}
		sort.Float64s(values)
		thresholds[feat] = stat.Quantile(q, stat.Empirical, values, nil)
	}
	return thresholds, nil
}

func f64(v float64) *float64 { return &v }

// DefaultTable builds the stock three-rule policy around calibrated
// thresholds: an identity/message flood rule, a position jump rule,
// and a hybrid rule that fires only when both do. The hybrid rule gets
// a late priority so the base rules' actions aggregate first.
func DefaultTable(thresholds map[string]float64, q float64) *Table {
	return &Table{
		Meta:       &Meta{Source: "auto-calibrated from clean traffic", Quantile: q},
		Thresholds: thresholds,
		Rules: []Rule{
			{
				ID: "R_S1_ID_FLOOD",
				If: Any(
					FeatureClause{Feature: workload.FeatNewMMSIRate, Op: ">", ThresholdKey: workload.FeatNewMMSIRate},
					FeatureClause{Feature: workload.FeatMessageBurstiness, Op: ">", ThresholdKey: workload.FeatMessageBurstiness},
				),
				Then:     []string{ActionThrottleAdmission, ActionQuarantineNewMMSI},
				Severity: 2,
				Explain:  "identity/message flood",
			},
			{
				ID: "R_S2_POS_JUMP",
				If: All(
					FeatureClause{Feature: workload.FeatPositionJumpRate, Op: ">", Value: f64(0)},
				),
				Then:     []string{ActionIsolateSuspiciousMMSI, ActionPQKeyRotation},
				Severity: 3,
				Explain:  "physically implausible movement",
			},
			{
				ID: "R_S3_HYBRID",
				If: All(
					RuleRef{Rule: "R_S1_ID_FLOOD"},
					RuleRef{Rule: "R_S2_POS_JUMP"},
				),
				Then:     []string{ActionThrottleAdmission, ActionIsolateSuspiciousMMSI, ActionQuarantineNewMMSI},
				Severity: 4,
				Explain:  "hybrid: flood + spoofing",
				Priority: 100,
			},
		},
		Effects: map[string]Effect{
			ActionThrottleAdmission:     {AdmissionRateMult: f64(0.6)},
			ActionQuarantineNewMMSI:     {DropNewMMSIMult: f64(0.8)},
			ActionIsolateSuspiciousMMSI: {DropSuspiciousMult: f64(0.5)},
			ActionPQKeyRotation:         {ConsensusOverheadMult: f64(1.1)},
		},
	}
}
