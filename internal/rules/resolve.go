// internal/rules/resolve.go
package rules

import (
	"fmt"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Field and value resolution for leaf rules.
 *
 * Rule data may override the field and/or value with a literal or a computed
 * resolver invoked with the rule. Without an override the rule's own field and
 * value are used. Nothing is cached; every leaf resolves fresh.
 */

// ResolveField returns the effective field of r.
func ResolveField(r *types.Rule) (string, error) {
	if r.Data != nil && r.Data.Field != nil {
		f, err := r.Data.Field.ResolveField(r)
		if err != nil {
			return "", fmt.Errorf("resolve field of %q: %w", r.Field, err)
		}
		return f, nil
	}
	return r.Field, nil
}

// ResolveValue returns the effective value of r, before any named transform.
func ResolveValue(r *types.Rule) (any, error) {
	if r.Data != nil && r.Data.Value != nil {
		v, err := r.Data.Value.ResolveValue(r)
		if err != nil {
			return nil, fmt.Errorf("resolve value of %q: %w", r.Field, err)
		}
		return v, nil
	}
	return r.Value, nil
}

// operand resolves field and value and applies the rule's named transform, if any.
func (reg *Registry) operand(r *types.Rule) (Operand, error) {
	field, err := ResolveField(r)
	if err != nil {
		return Operand{}, err
	}
	value, err := ResolveValue(r)
	if err != nil {
		return Operand{}, err
	}
	if r.Data != nil && r.Data.Transform != "" {
		t, err := reg.ValueTransform(r.Data.Transform)
		if err != nil {
			return Operand{}, err
		}
		if value, err = t(value, r); err != nil {
			return Operand{}, fmt.Errorf("transform %q: %w", r.Data.Transform, err)
		}
	}
	return Operand{Field: field, Value: value, Rule: r}, nil
}
