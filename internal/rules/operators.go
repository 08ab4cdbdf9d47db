// internal/rules/operators.go
package rules

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Operator tables.
 *
 * Implements the value transforms for the bool-query and query-string targets,
 * the DSL category table, and the clause selection rules.
 *
 * Operators (bool target):
 *   - equal/not_equal: identity (term)
 *   - less/less_or_equal/greater/greater_or_equal: single bound object (range)
 *   - between/not_between: {gte, lte} pair (range)
 *   - in/not_in: comma-separated list, trimmed (terms)
 *   - begins_with/ends_with/contains (+ not_ variants): wildcard pattern
 *   - is_empty/is_not_empty/is_null/is_not_null: {field: <field>} (exists)
 *
 * Query-string target has its own, smaller table. An operator missing from the
 * active table is a hard error, never a skipped rule.
 *
 * Function tables rather than interfaces: each operator is a one-line value
 * reshaping, so a map of funcs keeps the table readable and overridable.
 */

// Operand is what a transform sees: the resolved field, the resolved value and the rule.
type Operand struct {
	Field string
	Value any
	Rule  *types.Rule
}

// Transform reshapes an operand for the bool-query target.
type Transform func(op Operand) (any, error)

// StringTransform renders an operand for the query-string target.
type StringTransform func(op Operand) (string, error)

// DefaultBoolOperators returns a fresh copy of the bool-query operator table.
func DefaultBoolOperators() map[string]Transform {
	return map[string]Transform{
		"equal":            identity,
		"not_equal":        identity,
		"less":             bound("lt"),
		"less_or_equal":    bound("lte"),
		"greater":          bound("gt"),
		"greater_or_equal": bound("gte"),
		"between":          between,
		"not_between":      between,
		"in":               splitList,
		"not_in":           splitList,
		"begins_with":      wildcard("", "*"),
		"not_begins_with":  wildcard("", "*"),
		"ends_with":        wildcard("*", ""),
		"not_ends_with":    wildcard("*", ""),
		"contains":         wildcard("*", "*"),
		"not_contains":     wildcard("*", "*"),
		"is_empty":         exists,
		"is_not_empty":     exists,
		"is_null":          exists,
		"is_not_null":      exists,
	}
}

// DefaultQueryStringOperators returns a fresh copy of the query-string operator table.
func DefaultQueryStringOperators() map[string]StringTransform {
	return map[string]StringTransform{
		"is_not_null": constant("_exists_:"),
		"is_null":     constant("_missing_:"),
		"contains":    stringify,
		"between":     rangeString,
	}
}

// CategoryEntry lists the operators rendered with one DSL keyword.
type CategoryEntry struct {
	Category  types.Category
	Operators []string
}

// DefaultCategories returns the category table in scan order.
func DefaultCategories() []CategoryEntry {
	return []CategoryEntry{
		{Category: types.CategoryTerm, Operators: []string{"equal", "not_equal"}},
		{Category: types.CategoryTerms, Operators: []string{"in", "not_in"}},
		{Category: types.CategoryWildcard, Operators: []string{
			"begins_with", "not_begins_with", "contains", "not_contains", "ends_with", "not_ends_with",
		}},
		{Category: types.CategoryRange, Operators: []string{
			"less", "less_or_equal", "greater", "greater_or_equal", "between", "not_between",
		}},
		{Category: types.CategoryExists, Operators: []string{"is_empty", "is_not_empty", "is_null", "is_not_null"}},
	}
}

// CategoryFor scans the default category table. See categoryIn.
func CategoryFor(operator string) types.Category {
	return categoryIn(defaultCategories, operator)
}

var defaultCategories = DefaultCategories()

// categoryIn returns the first category listing operator.
// Operators listed nowhere fall back to wildcard.
// TODO: reject unlisted operators at registry construction once hosts register categories explicitly.
func categoryIn(table []CategoryEntry, operator string) types.Category {
	for _, entry := range table {
		for _, name := range entry.Operators {
			if name == operator {
				return entry.Category
			}
		}
	}
	return types.CategoryWildcard
}

// ClauseFor picks the bool bucket for a child of a group with the given condition.
// Checks run in order: OR, is_not_* exceptions, negative operators, default.
func ClauseFor(condition types.Condition, operator string) types.Clause {
	if condition == types.ConditionOr {
		return types.ClauseShould
	}
	switch operator {
	case "is_not_empty", "is_not_null":
		return types.ClauseMust
	case "is_empty", "is_null":
		return types.ClauseMustNot
	}
	if strings.HasPrefix(operator, "not_") {
		return types.ClauseMustNot
	}
	return types.ClauseMust
}

func identity(op Operand) (any, error) {
	return op.Value, nil
}

// bound builds a single-bound range object such as {"lt": v}.
func bound(key string) Transform {
	return func(op Operand) (any, error) {
		return map[string]any{key: op.Value}, nil
	}
}

func between(op Operand) (any, error) {
	lo, hi, err := pairOf(op.Value)
	if err != nil {
		return nil, err
	}
	return map[string]any{"gte": lo, "lte": hi}, nil
}

// splitList splits a comma-separated operand and trims each token.
// Already-split lists are accepted. Non-string elements of a pre-split list
// (coerced numbers) are kept as they are.
func splitList(op Operand) (any, error) {
	switch v := op.Value.(type) {
	case string:
		return trimAll(strings.Split(v, ",")), nil
	case []string:
		return trimAll(v), nil
	case []any:
		out := make([]any, len(v))
		mixed := false
		for i, e := range v {
			switch ev := e.(type) {
			case string:
				out[i] = strings.TrimSpace(ev)
			case map[string]any, []any, nil:
				return nil, fmt.Errorf("%w: list element %d has type %T", types.ErrInvalidValue, i, e)
			default:
				out[i] = ev
				mixed = true
			}
		}
		if mixed {
			return out, nil
		}
		strs := make([]string, len(out))
		for i, e := range out {
			strs[i] = e.(string)
		}
		return strs, nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: list operand must be a comma-separated string, got %T", types.ErrInvalidValue, op.Value)
		}
		return trimAll(strings.Split(s, ",")), nil
	}
}

func trimAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.TrimSpace(tok)
	}
	return out
}

func wildcard(prefix, suffix string) Transform {
	return func(op Operand) (any, error) {
		s, err := cast.ToStringE(op.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: wildcard operand must be a string, got %T", types.ErrInvalidValue, op.Value)
		}
		return prefix + s + suffix, nil
	}
}

func exists(op Operand) (any, error) {
	return map[string]any{"field": op.Field}, nil
}

func constant(s string) StringTransform {
	return func(Operand) (string, error) {
		return s, nil
	}
}

func stringify(op Operand) (string, error) {
	s, err := cast.ToStringE(op.Value)
	if err != nil {
		return "", fmt.Errorf("%w: cannot render %T", types.ErrInvalidValue, op.Value)
	}
	return s, nil
}

func rangeString(op Operand) (string, error) {
	lo, hi, err := pairOf(op.Value)
	if err != nil {
		return "", err
	}
	los, err := cast.ToStringE(lo)
	if err != nil {
		return "", fmt.Errorf("%w: cannot render lower bound %T", types.ErrInvalidValue, lo)
	}
	his, err := cast.ToStringE(hi)
	if err != nil {
		return "", fmt.Errorf("%w: cannot render upper bound %T", types.ErrInvalidValue, hi)
	}
	return "[" + los + " TO " + his + "]", nil
}

// pairOf unpacks a two-element operand used by between-style operators.
func pairOf(v any) (any, any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != 2 {
		return nil, nil, fmt.Errorf("%w: expected a two-element pair, got %v", types.ErrInvalidValue, v)
	}
	return rv.Index(0).Interface(), rv.Index(1).Interface(), nil
}
