package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Meta records where a policy table came from.
type Meta struct {
	Source   string  `yaml:"source,omitempty"`
	Quantile float64 `yaml:"quantile,omitempty"`
}

// Table is the full policy configuration: calibrated thresholds, the
// ordered rule list, and the per-action effect catalog. Read-only for
// the lifetime of a run once compiled; safe to share across scenarios.
type Table struct {
	Meta       *Meta              `yaml:"meta,omitempty"`
	Thresholds map[string]float64 `yaml:"thresholds"`
	Rules      []Rule             `yaml:"rules"`
	Effects    map[string]Effect  `yaml:"action_effects"`

	// rule indexes in dependency evaluation order, fixed by Compile
	order []int
}

// Load reads, parses and compiles a policy table YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy table: %w", err)
	}
	var tbl Table
	if err := yaml.Unmarshal(data, &tbl); err != nil {
		return nil, fmt.Errorf("parsing policy table: %w", err)
	}
	if err := tbl.Compile(); err != nil {
		return nil, err
	}
	return &tbl, nil
}

// Save writes the table as YAML, preserving rule order.
func (t *Table) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding policy table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing policy table: %w", err)
	}
	return nil
}

// Compile validates the table and fixes the dependency evaluation
// order: rules are topologically sorted so that every rule reference
// reads an already-computed outcome. Dangling references, cycles,
// duplicate ids, unknown operators and missing threshold keys are all
// ConfigErrors here, before any record is evaluated.
func (t *Table) Compile() error {
	index := make(map[string]int, len(t.Rules))
	for i, r := range t.Rules {
		if r.ID == "" {
			return &ConfigError{Reason: fmt.Sprintf("rule at position %d has no id", i)}
		}
		if _, dup := index[r.ID]; dup {
			return &ConfigError{RuleID: r.ID, Reason: "duplicate rule id"}
		}
		index[r.ID] = i
	}

	dependents := make([][]int, len(t.Rules))
	indegree := make([]int, len(t.Rules))
	for i, r := range t.Rules {
		if err := validateCondition(r.ID, t, t.Rules[i].If.root); err != nil {
			return err
		}
		for _, ref := range r.If.refs() {
			j, ok := index[ref]
			if !ok {
				return &ConfigError{RuleID: r.ID, Reason: fmt.Sprintf("references undefined rule %q", ref)}
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	// Kahn's algorithm; the ready queue keeps declaration order so the
	// evaluation order is deterministic.
	ready := make([]int, 0, len(t.Rules))
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	order := make([]int, 0, len(t.Rules))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}
	if len(order) != len(t.Rules) {
		for i, d := range indegree {
			if d > 0 {
				return &ConfigError{RuleID: t.Rules[i].ID, Reason: "circular rule dependency"}
			}
		}
	}

	t.order = order
	return nil
}

// validateCondition statically checks one condition subtree: operators
// must be known, feature clauses must carry a bound, and named
// thresholds must exist in the threshold table. Rule references are
// checked against the rule index by Compile itself.
func validateCondition(ruleID string, tbl *Table, c Condition) error {
	switch v := c.(type) {
	case nil:
		return nil
	case FeatureClause:
		if _, ok := ops[v.Op]; !ok {
			return &ConfigError{RuleID: ruleID, Reason: fmt.Sprintf("unknown op %q in clause on %q", v.Op, v.Feature)}
		}
		if v.ThresholdKey != "" {
			if _, ok := tbl.Thresholds[v.ThresholdKey]; !ok {
				return &ConfigError{RuleID: ruleID, Threshold: v.ThresholdKey, Reason: "not present in threshold table"}
			}
		} else if v.Value == nil {
			return &ConfigError{RuleID: ruleID, Reason: fmt.Sprintf("clause on %q has neither threshold_key nor value", v.Feature)}
		}
		return nil
	case RuleRef:
		return nil
	case AnyGroup:
		for _, child := range v.Children {
			if err := validateCondition(ruleID, tbl, child); err != nil {
				return err
			}
		}
		return nil
	case AllGroup:
		for _, child := range v.Children {
			if err := validateCondition(ruleID, tbl, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ConfigError{RuleID: ruleID, Reason: fmt.Sprintf("unsupported condition node %T", c)}
	}
}
