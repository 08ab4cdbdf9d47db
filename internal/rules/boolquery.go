// internal/rules/boolquery.go
package rules

import (
	"github.com/solatis/rulequery/internal/types"
)

/*
 * Structured bool-query emitter.
 *
 * Translates a rule tree into {"bool": {"must": [...], "must_not": [...], "should": [...]}}.
 *
 * Per group:
 *   1. Default and validate the condition (walker.enter)
 *   2. Route each child to a bucket with ClauseFor
 *   3. Nested groups append their own {"bool": ...} document
 *   4. Leaves append {category: {field: transform(value)}}, or
 *      {category: transform(value)} for arity-0 operators
 *   5. not_equal under OR is wrapped as {"bool": {"must_not": [fragment]}}
 *      so the negation survives inside "should"
 *
 * Buckets keep insertion order and only non-empty buckets are emitted.
 */

// buckets is an ordered multimap of clause -> fragments.
type buckets map[types.Clause][]any

func (b buckets) add(clause types.Clause, fragment any) {
	b[clause] = append(b[clause], fragment)
}

func (b buckets) document() map[string]any {
	out := make(map[string]any, len(b))
	for clause, fragments := range b {
		out[string(clause)] = fragments
	}
	return out
}

// buildBool translates one group. The result is always {"bool": {...}}.
func buildBool(w *walker, node *types.RuleNode, depth int) (map[string]any, error) {
	condition, err := w.enter(node, depth)
	if err != nil {
		return nil, err
	}

	parts := buckets{}
	for _, entry := range node.Rules {
		if entry.IsGroup() {
			nested, err := buildBool(w, entry.Group, depth+1)
			if err != nil {
				return nil, err
			}
			parts.add(ClauseFor(condition, ""), nested)
			continue
		}

		rule := leafRule(entry)
		fragment, err := boolFragment(w.reg, condition, rule)
		if err != nil {
			return nil, err
		}
		parts.add(ClauseFor(condition, rule.Operator), fragment)
	}

	return map[string]any{"bool": parts.document()}, nil
}

// boolFragment builds the clause for a single leaf.
func boolFragment(reg *Registry, condition types.Condition, rule *types.Rule) (map[string]any, error) {
	transform, err := reg.BoolTransform(rule.Operator)
	if err != nil {
		return nil, err
	}
	arity, err := reg.Arity(rule.Operator)
	if err != nil {
		return nil, err
	}
	category := string(reg.Category(rule.Operator))

	op, err := reg.operand(rule)
	if err != nil {
		return nil, &types.OperatorError{Operator: rule.Operator, Err: err}
	}
	shaped, err := transform(op)
	if err != nil {
		return nil, &types.OperatorError{Operator: rule.Operator, Err: err}
	}

	var fragment map[string]any
	if arity > 0 {
		fragment = map[string]any{category: map[string]any{op.Field: shaped}}
	} else {
		fragment = map[string]any{category: shaped}
	}

	if condition == types.ConditionOr && rule.Operator == "not_equal" {
		return map[string]any{"bool": map[string]any{"must_not": []any{fragment}}}, nil
	}
	return fragment, nil
}
