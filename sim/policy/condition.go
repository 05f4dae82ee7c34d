package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hcis-sim/hcis-sim/sim/workload"
)

// ops maps comparison operator names to their implementations.
var ops = map[string]func(a, b float64) bool{
	">":  func(a, b float64) bool { return a > b },
	">=": func(a, b float64) bool { return a >= b },
	"<":  func(a, b float64) bool { return a < b },
	"<=": func(a, b float64) bool { return a <= b },
	"==": func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
}

// Condition is one node of a rule's condition tree. Concrete variants
// are FeatureClause, RuleRef, AnyGroup and AllGroup; groups may nest.
type Condition interface {
	// eval resolves the node against one window record. fired holds the
	// outcomes of rules evaluated earlier in dependency order.
	eval(rec workload.FeatureRecord, tbl *Table, fired map[string]bool) (bool, error)
	// refs appends the ids of rules this node references.
	refs(ids []string) []string
}

// FeatureClause compares a record feature against a named threshold or
// a literal bound. Exactly one of ThresholdKey/Value must be set.
type FeatureClause struct {
	Feature      string
	Op           string
	ThresholdKey string
	Value        *float64
}

func (c FeatureClause) eval(rec workload.FeatureRecord, tbl *Table, _ map[string]bool) (bool, error) {
	cmp, ok := ops[c.Op]
	if !ok {
		return false, &ConfigError{Reason: fmt.Sprintf("unknown op %q in clause on %q", c.Op, c.Feature)}
	}
	bound, err := c.bound(tbl)
	if err != nil {
		return false, err
	}
	return cmp(rec.Feature(c.Feature), bound), nil
}

func (c FeatureClause) bound(tbl *Table) (float64, error) {
	if c.ThresholdKey != "" {
		b, ok := tbl.Thresholds[c.ThresholdKey]
		if !ok {
			return 0, &ConfigError{Threshold: c.ThresholdKey, Reason: "not present in threshold table"}
		}
		return b, nil
	}
	if c.Value == nil {
		return 0, &ConfigError{Reason: fmt.Sprintf("clause on %q has neither threshold_key nor value", c.Feature)}
	}
	return *c.Value, nil
}

func (c FeatureClause) refs(ids []string) []string { return ids }

// RuleRef resolves to another rule's fired outcome for the same record.
type RuleRef struct {
	Rule string
}

func (c RuleRef) eval(_ workload.FeatureRecord, _ *Table, fired map[string]bool) (bool, error) {
	v, ok := fired[c.Rule]
	if !ok {
		return false, &ConfigError{RuleID: c.Rule, Reason: "referenced before evaluation"}
	}
	return v, nil
}

func (c RuleRef) refs(ids []string) []string { return append(ids, c.Rule) }

// AnyGroup fires when at least one child fires. An empty group never fires.
type AnyGroup struct {
	Children []Condition
}

func (g AnyGroup) eval(rec workload.FeatureRecord, tbl *Table, fired map[string]bool) (bool, error) {
	for _, c := range g.Children {
		ok, err := c.eval(rec, tbl, fired)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (g AnyGroup) refs(ids []string) []string {
	for _, c := range g.Children {
		ids = c.refs(ids)
	}
	return ids
}

// AllGroup fires when every child fires. An empty group never fires.
type AllGroup struct {
	Children []Condition
}

func (g AllGroup) eval(rec workload.FeatureRecord, tbl *Table, fired map[string]bool) (bool, error) {
	if len(g.Children) == 0 {
		return false, nil
	}
	for _, c := range g.Children {
		ok, err := c.eval(rec, tbl, fired)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (g AllGroup) refs(ids []string) []string {
	for _, c := range g.Children {
		ids = c.refs(ids)
	}
	return ids
}

// Tree is a rule's top-level condition. A tree that carried neither an
// any nor an all group in the YAML never fires.
type Tree struct {
	root Condition
}

// Any builds a tree firing when at least one child fires.
func Any(children ...Condition) Tree { return Tree{root: AnyGroup{Children: children}} }

// All builds a tree firing when every child fires.
func All(children ...Condition) Tree { return Tree{root: AllGroup{Children: children}} }

func (t Tree) eval(rec workload.FeatureRecord, tbl *Table, fired map[string]bool) (bool, error) {
	if t.root == nil {
		return false, nil
	}
	return t.root.eval(rec, tbl, fired)
}

func (t Tree) refs() []string {
	if t.root == nil {
		return nil
	}
	return t.root.refs(nil)
}

// conditionYAML is the on-disk shape shared by every condition variant.
// Which fields are set decides the variant: any/all make a group, rule
// makes a rule reference, everything else is a feature clause.
type conditionYAML struct {
	Any          []Condition `yaml:"any,omitempty"`
	All          []Condition `yaml:"all,omitempty"`
	Rule         string      `yaml:"rule,omitempty"`
	Feature      string      `yaml:"feature,omitempty"`
	Op           string      `yaml:"op,omitempty"`
	ThresholdKey string      `yaml:"threshold_key,omitempty"`
	Value        *float64    `yaml:"value,omitempty"`
}

func decodeCondition(node *yaml.Node) (Condition, error) {
	var fields map[string]yaml.Node
	if err := node.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decoding condition: %w", err)
	}
	if raw, ok := fields["any"]; ok {
		children, err := decodeConditionList(&raw)
		if err != nil {
			return nil, err
		}
		return AnyGroup{Children: children}, nil
	}
	if raw, ok := fields["all"]; ok {
		children, err := decodeConditionList(&raw)
		if err != nil {
			return nil, err
		}
		return AllGroup{Children: children}, nil
	}
	if raw, ok := fields["rule"]; ok {
		var id string
		if err := raw.Decode(&id); err != nil {
			return nil, fmt.Errorf("decoding rule reference: %w", err)
		}
		return RuleRef{Rule: id}, nil
	}

	var clause struct {
		Feature      string   `yaml:"feature"`
		Op           string   `yaml:"op"`
		ThresholdKey string   `yaml:"threshold_key"`
		Value        *float64 `yaml:"value"`
	}
	if err := node.Decode(&clause); err != nil {
		return nil, fmt.Errorf("decoding feature clause: %w", err)
	}
	return FeatureClause{
		Feature:      clause.Feature,
		Op:           clause.Op,
		ThresholdKey: clause.ThresholdKey,
		Value:        clause.Value,
	}, nil
}

func decodeConditionList(node *yaml.Node) ([]Condition, error) {
	var raw []yaml.Node
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding condition list: %w", err)
	}
	children := make([]Condition, 0, len(raw))
	for i := range raw {
		c, err := decodeCondition(&raw[i])
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}

// UnmarshalYAML shape-detects the condition tree once, at load time,
// into the typed variants. A mapping with neither any nor all decodes
// to the never-firing tree rather than an error.
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	var fields map[string]yaml.Node
	if err := node.Decode(&fields); err != nil {
		return fmt.Errorf("decoding condition tree: %w", err)
	}
	if raw, ok := fields["any"]; ok {
		children, err := decodeConditionList(&raw)
		if err != nil {
			return err
		}
		t.root = AnyGroup{Children: children}
		return nil
	}
	if raw, ok := fields["all"]; ok {
		children, err := decodeConditionList(&raw)
		if err != nil {
			return err
		}
		t.root = AllGroup{Children: children}
		return nil
	}
	t.root = nil
	return nil
}

func (t Tree) MarshalYAML() (interface{}, error) {
	if t.root == nil {
		return map[string]interface{}{}, nil
	}
	return t.root, nil
}

func (c FeatureClause) MarshalYAML() (interface{}, error) {
	return conditionYAML{Feature: c.Feature, Op: c.Op, ThresholdKey: c.ThresholdKey, Value: c.Value}, nil
}

func (c RuleRef) MarshalYAML() (interface{}, error) {
	return conditionYAML{Rule: c.Rule}, nil
}

func (g AnyGroup) MarshalYAML() (interface{}, error) {
	return conditionYAML{Any: g.Children}, nil
}

func (g AllGroup) MarshalYAML() (interface{}, error) {
	return conditionYAML{All: g.Children}, nil
}
