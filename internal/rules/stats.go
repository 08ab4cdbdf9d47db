// internal/rules/stats.go
package rules

import "github.com/solatis/rulequery/internal/types"

// TreeStats summarizes the shape of a rule tree.
type TreeStats struct {
	Groups int // including the root
	Leaves int
	Depth  int // root alone = 1
}

// Stats walks node iteratively, so arbitrarily deep input cannot exhaust the stack
// before the translator's depth guard rejects it.
func Stats(node *types.RuleNode) TreeStats {
	if node == nil {
		return TreeStats{}
	}

	type frame struct {
		node  *types.RuleNode
		depth int
	}
	var stats TreeStats
	stack := []frame{{node: node, depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stats.Groups++
		if f.depth > stats.Depth {
			stats.Depth = f.depth
		}
		for _, e := range f.node.Rules {
			if e.IsGroup() {
				stack = append(stack, frame{node: e.Group, depth: f.depth + 1})
			} else {
				stats.Leaves++
			}
		}
	}
	return stats
}
