package policy

import "fmt"

// ConfigError reports a structural problem in the policy table: an
// unknown operator, a dangling or cyclic rule reference, a clause with
// no comparison bound, or a threshold key missing from the threshold
// table. Fatal to the scenario that hit it; never retried.
type ConfigError struct {
	RuleID    string // offending rule id, when known
	Threshold string // missing threshold key, when that is the cause
	Reason    string
}

func (e *ConfigError) Error() string {
	switch {
	case e.RuleID != "" && e.Threshold != "":
		return fmt.Sprintf("policy config: rule %q: threshold %q: %s", e.RuleID, e.Threshold, e.Reason)
	case e.RuleID != "":
		return fmt.Sprintf("policy config: rule %q: %s", e.RuleID, e.Reason)
	case e.Threshold != "":
		return fmt.Sprintf("policy config: threshold %q: %s", e.Threshold, e.Reason)
	}
	return "policy config: " + e.Reason
}
