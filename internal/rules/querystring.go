// internal/rules/querystring.go
package rules

import (
	"strings"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Query-string emitter.
 *
 * Translates a rule tree into flat text such as `f:v AND (a:x OR _missing_:b)`.
 * Siblings are joined with " AND " / " OR "; nested groups are parenthesized;
 * the top level is never wrapped. Arity-0 operators render as prefix forms
 * (`_exists_:field`), all others as `field:value`.
 */

// buildQueryString translates one group.
func buildQueryString(w *walker, node *types.RuleNode, depth int) (string, error) {
	condition, err := w.enter(node, depth)
	if err != nil {
		return "", err
	}
	if len(node.Rules) == 0 {
		return "", nil
	}

	separator := " " + string(condition) + " "
	var sb strings.Builder
	for i, entry := range node.Rules {
		if entry.IsGroup() {
			nested, err := buildQueryString(w, entry.Group, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString("(" + nested + ")")
		} else {
			fragment, err := queryStringFragment(w.reg, leafRule(entry))
			if err != nil {
				return "", err
			}
			sb.WriteString(fragment)
		}
		if i < len(node.Rules)-1 {
			sb.WriteString(separator)
		}
	}
	return sb.String(), nil
}

// queryStringFragment renders a single leaf.
func queryStringFragment(reg *Registry, rule *types.Rule) (string, error) {
	transform, err := reg.QueryStringTransform(rule.Operator)
	if err != nil {
		return "", err
	}
	arity, err := reg.Arity(rule.Operator)
	if err != nil {
		return "", err
	}

	op, err := reg.operand(rule)
	if err != nil {
		return "", &types.OperatorError{Operator: rule.Operator, Err: err}
	}
	rendered, err := transform(op)
	if err != nil {
		return "", &types.OperatorError{Operator: rule.Operator, Err: err}
	}

	if arity > 0 {
		return op.Field + ":" + rendered, nil
	}
	return rendered + op.Field, nil
}
