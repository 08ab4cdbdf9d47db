// internal/rules/registry.go
package rules

import (
	"fmt"
	"strings"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Operator registry.
 *
 * Bundles the bool-query table, the query-string table, the category table,
 * the operator-type catalog (arity) and the host's named value transforms.
 * The "typed" transform (see coercion.go) is always registered unless a host
 * option supplies its own.
 *
 * A Registry is built once at startup with NewRegistry and never mutated
 * afterwards, so one instance can serve concurrent translations.
 */

// OperatorType is a catalog entry owned by the rule editor.
// NbInputs is the arity: 0 for existence-style operators.
type OperatorType struct {
	Type     string
	NbInputs int
	Multiple bool
	ApplyTo  []string
}

// OperatorTypes is the rule editor's operator catalog (getOperatorByType).
type OperatorTypes interface {
	OperatorByType(name string) (OperatorType, bool)
}

// OperatorTypeTable is a map-backed OperatorTypes.
type OperatorTypeTable map[string]OperatorType

// OperatorByType implements OperatorTypes.
func (t OperatorTypeTable) OperatorByType(name string) (OperatorType, bool) {
	ot, ok := t[name]
	return ot, ok
}

var (
	applyAll     = []string{"string", "number", "datetime", "boolean"}
	applyOrdered = []string{"number", "datetime"}
	applyString  = []string{"string"}
)

// DefaultOperatorTypes returns the rule editor's stock operator catalog.
func DefaultOperatorTypes() OperatorTypeTable {
	t := OperatorTypeTable{}
	add := func(name string, nb int, multiple bool, applyTo []string) {
		t[name] = OperatorType{Type: name, NbInputs: nb, Multiple: multiple, ApplyTo: applyTo}
	}
	add("equal", 1, false, applyAll)
	add("not_equal", 1, false, applyAll)
	add("in", 1, true, applyAll[:3])
	add("not_in", 1, true, applyAll[:3])
	add("less", 1, false, applyOrdered)
	add("less_or_equal", 1, false, applyOrdered)
	add("greater", 1, false, applyOrdered)
	add("greater_or_equal", 1, false, applyOrdered)
	add("between", 2, false, applyOrdered)
	add("not_between", 2, false, applyOrdered)
	add("begins_with", 1, false, applyString)
	add("not_begins_with", 1, false, applyString)
	add("contains", 1, false, applyString)
	add("not_contains", 1, false, applyString)
	add("ends_with", 1, false, applyString)
	add("not_ends_with", 1, false, applyString)
	add("is_empty", 0, false, applyString)
	add("is_not_empty", 0, false, applyString)
	add("is_null", 0, false, applyAll)
	add("is_not_null", 0, false, applyAll)
	return t
}

// ValueTransform is a host-registered transform selected by RuleData.Transform.
type ValueTransform func(value any, rule *types.Rule) (any, error)

// Registry holds the static operator configuration used by both emitters.
type Registry struct {
	boolOps         map[string]Transform
	stringOps       map[string]StringTransform
	categories      []CategoryEntry
	operatorTypes   OperatorTypes
	valueTransforms map[string]ValueTransform
}

// Option customizes a Registry during construction.
type Option func(*Registry)

// WithBoolOperator adds or replaces a bool-query transform.
func WithBoolOperator(name string, t Transform) Option {
	return func(r *Registry) { r.boolOps[name] = t }
}

// WithQueryStringOperator adds or replaces a query-string transform.
func WithQueryStringOperator(name string, t StringTransform) Option {
	return func(r *Registry) { r.stringOps[name] = t }
}

// WithCategory prepends a category entry so it wins over the defaults.
func WithCategory(category types.Category, operators ...string) Option {
	return func(r *Registry) {
		r.categories = append([]CategoryEntry{{Category: category, Operators: operators}}, r.categories...)
	}
}

// WithOperatorTypes replaces the operator-type catalog.
func WithOperatorTypes(ot OperatorTypes) Option {
	return func(r *Registry) { r.operatorTypes = ot }
}

// WithValueTransform registers a named value transform.
// Names are case-insensitive; configuration loaders lowercase map keys.
func WithValueTransform(name string, t ValueTransform) Option {
	return func(r *Registry) { r.valueTransforms[strings.ToLower(name)] = t }
}

// NewRegistry builds a registry from the default tables plus opts.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		boolOps:         DefaultBoolOperators(),
		stringOps:       DefaultQueryStringOperators(),
		categories:      DefaultCategories(),
		operatorTypes:   DefaultOperatorTypes(),
		valueTransforms: make(map[string]ValueTransform),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.valueTransforms[TypedTransformName]; !ok {
		r.valueTransforms[TypedTransformName] = r.typedValue
	}
	return r
}

// BoolTransform looks up the bool-query transform for operator.
func (r *Registry) BoolTransform(operator string) (Transform, error) {
	t, ok := r.boolOps[operator]
	if !ok {
		return nil, &types.OperatorError{Operator: operator, Err: types.ErrUnsupportedOperator}
	}
	return t, nil
}

// QueryStringTransform looks up the query-string transform for operator.
func (r *Registry) QueryStringTransform(operator string) (StringTransform, error) {
	t, ok := r.stringOps[operator]
	if !ok {
		return nil, &types.OperatorError{Operator: operator, Err: types.ErrUnsupportedOperator}
	}
	return t, nil
}

// Category returns the DSL keyword for operator.
func (r *Registry) Category(operator string) types.Category {
	return categoryIn(r.categories, operator)
}

// Arity returns nb_inputs for operator from the operator-type catalog.
func (r *Registry) Arity(operator string) (int, error) {
	ot, ok := r.operatorTypes.OperatorByType(operator)
	if !ok {
		return 0, &types.OperatorError{Operator: operator, Err: types.ErrUnknownOperatorType}
	}
	if ot.NbInputs < 0 {
		return 0, &types.OperatorError{Operator: operator, Err: fmt.Errorf("%w: negative nb_inputs %d", types.ErrUnknownOperatorType, ot.NbInputs)}
	}
	return ot.NbInputs, nil
}

// ValueTransform looks up a named value transform.
func (r *Registry) ValueTransform(name string) (ValueTransform, error) {
	t, ok := r.valueTransforms[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", types.ErrUnknownTransform, name)
	}
	return t, nil
}
