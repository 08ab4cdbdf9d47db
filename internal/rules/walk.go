// internal/rules/walk.go
package rules

import (
	"fmt"

	"github.com/solatis/rulequery/internal/types"
)

// walker carries the per-translation context shared by both emitters.
// Emitters recurse through their own build functions and call enter on every group.
type walker struct {
	reg              *Registry
	defaultCondition types.Condition
	maxDepth         int
}

// enter validates a group before its children are visited.
// Depth starts at 1 for the root.
func (w *walker) enter(node *types.RuleNode, depth int) (types.Condition, error) {
	if depth > w.maxDepth {
		return "", fmt.Errorf("%w (max %d)", types.ErrTreeTooDeep, w.maxDepth)
	}
	raw := node.Condition
	if raw == "" {
		raw = string(w.defaultCondition)
	}
	return types.ParseCondition(raw)
}

// leafRule returns the rule of a non-group entry.
// Groups without children carry no rule and resolve to a rule with no operator.
func leafRule(e types.Entry) *types.Rule {
	if e.Rule != nil {
		return e.Rule
	}
	return &types.Rule{}
}
