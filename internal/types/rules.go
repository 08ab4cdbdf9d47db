// internal/types/rules.go
package types

/*
 * Domain types for rule trees.
 *
 * Provides RuleNode, Entry, Rule and the field/value override variants consumed
 * by internal/rules for translation. These types are wire-format agnostic -
 * decoding from JSON/YAML maps happens in rules.DecodeTree.
 *
 * Key types:
 *   - RuleNode: group of entries combined by AND/OR
 *   - Entry: one child of a group, either a nested RuleNode or a leaf Rule
 *   - Rule: single field/operator/value condition
 *   - FieldSpec/ValueSpec: literal or computed per-rule overrides
 *
 * Dependencies: None
 */

// RuleNode is a logical group. Empty Condition means "use the configured default".
// Nil Rules means the node carries no constraints.
type RuleNode struct {
	Condition string
	Rules     []Entry
}

// Entry is one child of a RuleNode. Exactly one of Group and Rule is set.
type Entry struct {
	Group *RuleNode
	Rule  *Rule
}

// IsGroup reports whether the entry is a nested group with at least one child.
// A group with no children is treated as a leaf and fails operator lookup.
func (e Entry) IsGroup() bool {
	return e.Group != nil && len(e.Group.Rules) > 0
}

// GroupEntry wraps a nested node.
func GroupEntry(n *RuleNode) Entry { return Entry{Group: n} }

// RuleEntry wraps a leaf rule.
func RuleEntry(r *Rule) Entry { return Entry{Rule: r} }

// Rule is a leaf condition.
type Rule struct {
	ID       string // UI filter id, informational
	Field    string
	Type     string // UI value type, informational
	Input    string // UI input widget, informational
	Operator string
	Value    any // scalar, two-element []any for pairs, comma-separated string for lists
	Data     *RuleData
}

// RuleData carries optional per-rule overrides supplied by the host.
type RuleData struct {
	Field     FieldSpec // nil = no override
	Value     ValueSpec // nil = no override
	Transform string    // name of a host-registered value transform, "" = none
}

// FieldSpec overrides the field a rule targets.
// Sealed: only LiteralField and ComputedField implement it.
type FieldSpec interface {
	ResolveField(r *Rule) (string, error)
	fieldSpec()
}

// LiteralField replaces the rule's field with a fixed name.
type LiteralField string

func (f LiteralField) ResolveField(*Rule) (string, error) { return string(f), nil }
func (LiteralField) fieldSpec()                           {}

// ComputedField derives the field from the rule.
type ComputedField func(r *Rule) (string, error)

func (f ComputedField) ResolveField(r *Rule) (string, error) { return f(r) }
func (ComputedField) fieldSpec()                             {}

// ValueSpec overrides the operand of a rule.
// Sealed: only LiteralValue and ComputedValue implement it.
type ValueSpec interface {
	ResolveValue(r *Rule) (any, error)
	valueSpec()
}

// LiteralValue replaces the rule's value with V.
type LiteralValue struct {
	V any
}

func (v LiteralValue) ResolveValue(*Rule) (any, error) { return v.V, nil }
func (LiteralValue) valueSpec()                        {}

// ComputedValue derives the operand from the rule.
type ComputedValue func(r *Rule) (any, error)

func (f ComputedValue) ResolveValue(r *Rule) (any, error) { return f(r) }
func (ComputedValue) valueSpec()                          {}
