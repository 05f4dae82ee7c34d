package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hcis-sim/hcis-sim/sim/workload"
)

func TestAggregate_FirstOccurrenceDeduplication(t *testing.T) {
	tbl := compiled(t, &Table{Rules: []Rule{
		{ID: "R_A", If: Any(), Then: []string{"throttle_admission", "quarantine_new_mmsi"}},
		{ID: "R_B", If: Any(), Then: []string{"throttle_admission", "isolate_suspicious_mmsi"}},
	}})

	actions, _ := tbl.Aggregate(map[string]bool{"R_A": true, "R_B": true})
	assert.Equal(t, []string{"throttle_admission", "quarantine_new_mmsi", "isolate_suspicious_mmsi"}, actions)
}

func TestAggregate_PriorityOrdersContributions(t *testing.T) {
	// R_LATE is declared first but carries a late priority, so its
	// actions must aggregate after both default-priority rules.
	tbl := compiled(t, &Table{Rules: []Rule{
		{ID: "R_LATE", Priority: 100, If: Any(), Then: []string{"late_action"}},
		{ID: "R_ONE", If: Any(), Then: []string{"first_action"}},
		{ID: "R_TWO", If: Any(), Then: []string{"second_action"}},
	}})

	fired := map[string]bool{"R_LATE": true, "R_ONE": true, "R_TWO": true}
	actions, trail := tbl.Aggregate(fired)

	assert.Equal(t, []string{"first_action", "second_action", "late_action"}, actions)

	trailRules := make([]string, len(trail))
	for i, e := range trail {
		trailRules[i] = e.Rule
	}
	assert.Equal(t, []string{"R_ONE", "R_TWO", "R_LATE"}, trailRules)
}

func TestAggregate_TiesKeepDeclarationOrder(t *testing.T) {
	tbl := compiled(t, &Table{Rules: []Rule{
		{ID: "R_B", If: Any(), Then: []string{"b"}},
		{ID: "R_A", If: Any(), Then: []string{"a"}},
	}})
	actions, _ := tbl.Aggregate(map[string]bool{"R_A": true, "R_B": true})
	assert.Equal(t, []string{"b", "a"}, actions)
}

func TestAggregate_ExplainTrail(t *testing.T) {
	tbl := compiled(t, &Table{Rules: []Rule{
		{ID: "R_A", If: Any(), Then: []string{"x"}, Explain: "reason A"},
		{ID: "R_B", If: Any(), Then: []string{"y"}, Explain: "reason B"},
	}})
	_, trail := tbl.Aggregate(map[string]bool{"R_B": true})
	if len(trail) != 1 {
		t.Fatalf("expected one trail entry, got %d", len(trail))
	}
	assert.Equal(t, Explanation{Rule: "R_B", Why: "reason B"}, trail[0])
}

func TestApply_AnnotatesStream(t *testing.T) {
	tbl := compiled(t, &Table{Rules: []Rule{
		{
			ID:      "R_JUMP",
			If:      All(FeatureClause{Feature: workload.FeatPositionJumpRate, Op: ">", Value: f64(0)}),
			Then:    []string{ActionIsolateSuspiciousMMSI},
			Explain: "implausible movement",
		},
	}})

	records := []workload.FeatureRecord{
		{WindowID: 1, Features: map[string]float64{workload.FeatPositionJumpRate: 0}},
		{WindowID: 2, Features: map[string]float64{workload.FeatPositionJumpRate: 0.3}},
	}
	annotated, err := tbl.Apply(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(annotated) != 2 {
		t.Fatalf("expected 2 annotated records, got %d", len(annotated))
	}

	assert.False(t, annotated[0].Fired)
	assert.Empty(t, annotated[0].Actions)

	assert.True(t, annotated[1].Fired)
	assert.Equal(t, []string{ActionIsolateSuspiciousMMSI}, annotated[1].Actions)
	assert.Equal(t, int64(2), annotated[1].WindowID)
	assert.Equal(t, "implausible movement", annotated[1].Explain[0].Why)
}

func TestApply_FiredRuleWithNoActionsLeavesPolicyUnfired(t *testing.T) {
	// policy_fired tracks the aggregated action list, not rule outcomes.
	tbl := compiled(t, &Table{Rules: []Rule{
		{ID: "R_SILENT", If: All(FeatureClause{Feature: "f", Op: ">", Value: f64(0)})},
	}})
	annotated, err := tbl.Apply([]workload.FeatureRecord{
		{WindowID: 1, Features: map[string]float64{"f": 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.False(t, annotated[0].Fired)
	assert.Len(t, annotated[0].Explain, 1)
}
