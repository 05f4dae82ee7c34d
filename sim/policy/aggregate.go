package policy

import (
	"sort"

	"github.com/hcis-sim/hcis-sim/sim/workload"
)

// Explanation records why one rule fired for a window.
type Explanation struct {
	Rule string `yaml:"rule"`
	Why  string `yaml:"why"`
}

// Annotated is a feature record with the policy verdict attached:
// the ordered de-duplicated action list, the explanation trail, and
// whether any rule fired.
type Annotated struct {
	workload.FeatureRecord

	Actions []string
	Explain []Explanation
	Fired   bool
}

// Aggregate folds the fired rules for one record into an ordered,
// de-duplicated action list plus the explanation trail. Rules
// contribute in ascending priority, ties in declaration order; an
// action keeps the position given by the first rule that emitted it.
func (t *Table) Aggregate(fired map[string]bool) ([]string, []Explanation) {
	sorted := make([]int, len(t.Rules))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return t.Rules[sorted[a]].Priority < t.Rules[sorted[b]].Priority
	})

	var actions []string
	var trail []Explanation
	seen := make(map[string]bool)
	for _, i := range sorted {
		r := &t.Rules[i]
		if !fired[r.ID] {
			continue
		}
		trail = append(trail, Explanation{Rule: r.ID, Why: r.Explain})
		for _, a := range r.Then {
			if seen[a] {
				continue
			}
			seen[a] = true
			actions = append(actions, a)
		}
	}
	return actions, trail
}

// Apply annotates every record in the stream with its policy verdict.
// Evaluation is record-local, so the stream order is preserved exactly
// as given.
func (t *Table) Apply(records []workload.FeatureRecord) ([]Annotated, error) {
	out := make([]Annotated, 0, len(records))
	for _, rec := range records {
		fired, err := t.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		actions, trail := t.Aggregate(fired)
		out = append(out, Annotated{
			FeatureRecord: rec,
			Actions:       actions,
			Explain:       trail,
			Fired:         len(actions) > 0,
		})
	}
	return out, nil
}
