package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hcis-sim/hcis-sim/sim/workload"
)

func stream(feature string, values ...float64) []workload.FeatureRecord {
	records := make([]workload.FeatureRecord, len(values))
	for i, v := range values {
		records[i] = workload.FeatureRecord{
			WindowID: int64(i),
			Features: map[string]float64{feature: v},
		}
	}
	return records
}

func TestCalibrateThresholds_HighQuantileIsMax(t *testing.T) {
	records := stream("F2_new_mmsi_rate", 3, 1, 4, 1, 5, 9, 2, 6, 5, 3)
	thresholds, err := CalibrateThresholds(records, []string{"F2_new_mmsi_rate"}, 0.999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 9.0, thresholds["F2_new_mmsi_rate"])
}

func TestCalibrateThresholds_ConstantStream(t *testing.T) {
	records := stream("F3_message_burstiness", 2, 2, 2, 2)
	thresholds, err := CalibrateThresholds(records, []string{"F3_message_burstiness"}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 2.0, thresholds["F3_message_burstiness"])
}

func TestCalibrateThresholds_MissingFeatureReadsZero(t *testing.T) {
	records := stream("other", 1, 2, 3)
	thresholds, err := CalibrateThresholds(records, []string{"F4_position_jump_rate"}, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 0.0, thresholds["F4_position_jump_rate"])
}

func TestCalibrateThresholds_Rejections(t *testing.T) {
	if _, err := CalibrateThresholds(nil, []string{"f"}, 0.9); err == nil {
		t.Error("empty stream must be rejected")
	}
	records := stream("f", 1)
	for _, q := range []float64{0, 1, -0.1, 1.5} {
		if _, err := CalibrateThresholds(records, []string{"f"}, q); err == nil {
			t.Errorf("quantile %v must be rejected", q)
		}
	}
}

func TestDefaultTable_CompilesAndFires(t *testing.T) {
	thresholds := map[string]float64{
		workload.FeatNewMMSIRate:       0.4,
		workload.FeatMessageBurstiness: 2.0,
		workload.FeatPositionJumpRate:  0.0,
	}
	tbl := DefaultTable(thresholds, 0.999)
	if err := tbl.Compile(); err != nil {
		t.Fatalf("default table must compile: %v", err)
	}

	// Flood and spoofing together: hybrid fires and its late priority
	// keeps base-rule actions first.
	annotated, err := tbl.Apply([]workload.FeatureRecord{{
		WindowID: 7,
		Features: map[string]float64{
			workload.FeatNewMMSIRate:      0.8,
			workload.FeatPositionJumpRate: 0.1,
		},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.True(t, annotated[0].Fired)
	assert.Equal(t, []string{
		ActionThrottleAdmission,
		ActionQuarantineNewMMSI,
		ActionIsolateSuspiciousMMSI,
		ActionPQKeyRotation,
	}, annotated[0].Actions)

	trailRules := make([]string, len(annotated[0].Explain))
	for i, e := range annotated[0].Explain {
		trailRules[i] = e.Rule
	}
	assert.Equal(t, []string{"R_S1_ID_FLOOD", "R_S2_POS_JUMP", "R_S3_HYBRID"}, trailRules)

	// Quiet window: nothing fires.
	annotated, err = tbl.Apply([]workload.FeatureRecord{{WindowID: 8, Features: map[string]float64{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.False(t, annotated[0].Fired)
}
