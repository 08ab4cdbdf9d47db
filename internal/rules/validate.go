// internal/rules/validate.go
package rules

import (
	"fmt"
	"strings"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Resource limit validation.
 *
 * Checks an untrusted rule tree against size limits before it is translated,
 * so oversized requests fail with a precise error instead of producing a query
 * Elasticsearch will reject or struggle with.
 *
 * Checks:
 *   1. Group nesting depth (MaxDepth)
 *   2. Total leaf count (MaxRules)
 *   3. Field name length (MaxFieldLength)
 *   4. in/not_in list length, counted after splitting (MaxListValues)
 *
 * Checks 3 and 4 apply to the field and value the emitters will see, i.e.
 * after data.field / data.value overrides are resolved.
 *
 * Conditions and operators are not checked here; translation reports those.
 * The walk is iterative and visits children in document order.
 */

// Limits bounds the size of an accepted tree. Zero fields take the defaults.
type Limits struct {
	MaxDepth       int
	MaxRules       int
	MaxListValues  int
	MaxFieldLength int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:       types.MaxTreeDepth,
		MaxRules:       types.MaxRules,
		MaxListValues:  types.MaxListValues,
		MaxFieldLength: types.MaxFieldLength,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxRules <= 0 {
		l.MaxRules = d.MaxRules
	}
	if l.MaxListValues <= 0 {
		l.MaxListValues = d.MaxListValues
	}
	if l.MaxFieldLength <= 0 {
		l.MaxFieldLength = d.MaxFieldLength
	}
	return l
}

// Validate checks node against limits and returns its shape.
// A nil node is valid and empty.
func Validate(node *types.RuleNode, limits Limits) (TreeStats, error) {
	if node == nil {
		return TreeStats{}, nil
	}
	limits = limits.withDefaults()

	type frame struct {
		node  *types.RuleNode
		depth int
	}
	var stats TreeStats
	stack := []frame{{node: node, depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > limits.MaxDepth {
			return stats, fmt.Errorf("%w (max %d)", types.ErrTreeTooDeep, limits.MaxDepth)
		}
		stats.Groups++
		if f.depth > stats.Depth {
			stats.Depth = f.depth
		}

		// Push in reverse so children pop in document order
		for i := len(f.node.Rules) - 1; i >= 0; i-- {
			e := f.node.Rules[i]
			if e.IsGroup() {
				stack = append(stack, frame{node: e.Group, depth: f.depth + 1})
				continue
			}
			stats.Leaves++
			if stats.Leaves > limits.MaxRules {
				return stats, fmt.Errorf("%w (max %d)", types.ErrTooManyRules, limits.MaxRules)
			}
			if err := validateLeaf(leafRule(e), limits); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// validateLeaf checks the effective field and value, so data overrides are bounded too.
func validateLeaf(r *types.Rule, limits Limits) error {
	field, err := ResolveField(r)
	if err != nil {
		return err
	}
	if len(field) > limits.MaxFieldLength {
		return fmt.Errorf("%w: %d bytes (max %d)", types.ErrFieldTooLong, len(field), limits.MaxFieldLength)
	}
	if r.Operator != "in" && r.Operator != "not_in" {
		return nil
	}
	value, err := ResolveValue(r)
	if err != nil {
		return err
	}
	n := 0
	switch v := value.(type) {
	case string:
		n = strings.Count(v, ",") + 1
	case []any:
		n = len(v)
	case []string:
		n = len(v)
	}
	if n > limits.MaxListValues {
		return &types.OperatorError{
			Operator: r.Operator,
			Err:      fmt.Errorf("%w: %d values (max %d)", types.ErrTooManyValues, n, limits.MaxListValues),
		}
	}
	return nil
}
