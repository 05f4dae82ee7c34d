package policy

import (
	"github.com/hcis-sim/hcis-sim/sim/workload"
)

// Evaluate resolves every rule's fired outcome for one window record.
// Rules are visited in the dependency order fixed by Compile, so a
// rule reference always reads an already-computed outcome, however
// deep the reference chain. Pure and record-local: outcomes never
// carry over between records, so repeated evaluation of the same
// record yields the same fired set.
func (t *Table) Evaluate(rec workload.FeatureRecord) (map[string]bool, error) {
	if t.order == nil {
		return nil, &ConfigError{Reason: "table not compiled"}
	}
	fired := make(map[string]bool, len(t.Rules))
	for _, i := range t.order {
		r := &t.Rules[i]
		ok, err := r.If.eval(rec, t, fired)
		if err != nil {
			return nil, err
		}
		fired[r.ID] = ok
	}
	return fired, nil
}
