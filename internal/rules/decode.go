// internal/rules/decode.go
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Rule tree decoding.
 *
 * Rule editors hand over trees as generic JSON objects:
 *
 *   {"condition": "AND", "rules": [
 *     {"id": "age", "field": "age", "operator": "between", "value": [18, 30]},
 *     {"condition": "OR", "rules": [...]}
 *   ], "valid": true}
 *
 * An entry is a group when it has a "rules" key, a leaf otherwise. Unknown keys
 * (valid, not, flags) are ignored. Rule data overrides:
 *   - data.field: string literal, or {"expr": "..."} computed
 *   - data.value: any literal, or {"expr": "..."} computed
 *   - data.transform: name of a registered value transform
 */

type rawEntry struct {
	Condition string           `mapstructure:"condition"`
	Rules     []map[string]any `mapstructure:"rules"`
	ID        string           `mapstructure:"id"`
	Field     string           `mapstructure:"field"`
	Type      string           `mapstructure:"type"`
	Input     string           `mapstructure:"input"`
	Operator  string           `mapstructure:"operator"`
	Value     any              `mapstructure:"value"`
	Data      map[string]any   `mapstructure:"data"`
}

// ParseTree decodes a JSON or YAML document into a rule tree.
func ParseTree(data []byte) (*types.RuleNode, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", types.ErrInvalidRuleTree)
	}

	var m map[string]any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidRuleTree, err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidRuleTree, err)
		}
	}
	return DecodeTree(m)
}

// DecodeTree converts a generic map into a rule tree.
// Nesting beyond types.MaxTreeDepth is rejected while decoding.
func DecodeTree(m map[string]any) (*types.RuleNode, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: document is not an object", types.ErrInvalidRuleTree)
	}
	return decodeNode(m, "$", 1)
}

func decodeNode(m map[string]any, path string, depth int) (*types.RuleNode, error) {
	if depth > types.MaxTreeDepth {
		return nil, fmt.Errorf("%w at %s", types.ErrTreeTooDeep, path)
	}
	raw, err := decodeRaw(m, path)
	if err != nil {
		return nil, err
	}

	node := &types.RuleNode{Condition: raw.Condition}
	if _, ok := m["rules"]; !ok {
		return node, nil
	}
	node.Rules = make([]types.Entry, 0, len(raw.Rules))
	for i, child := range raw.Rules {
		childPath := fmt.Sprintf("%s.rules[%d]", path, i)
		if _, isGroup := child["rules"]; isGroup {
			nested, err := decodeNode(child, childPath, depth+1)
			if err != nil {
				return nil, err
			}
			node.Rules = append(node.Rules, types.GroupEntry(nested))
			continue
		}
		rule, err := decodeRule(child, childPath)
		if err != nil {
			return nil, err
		}
		node.Rules = append(node.Rules, types.RuleEntry(rule))
	}
	return node, nil
}

func decodeRule(m map[string]any, path string) (*types.Rule, error) {
	raw, err := decodeRaw(m, path)
	if err != nil {
		return nil, err
	}
	rule := &types.Rule{
		ID:       raw.ID,
		Field:    raw.Field,
		Type:     raw.Type,
		Input:    raw.Input,
		Operator: raw.Operator,
		Value:    raw.Value,
	}
	if raw.Data != nil {
		data, err := decodeData(raw.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.data: %v", types.ErrInvalidRuleTree, path, err)
		}
		rule.Data = data
	}
	return rule, nil
}

func decodeRaw(m map[string]any, path string) (rawEntry, error) {
	var raw rawEntry
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return raw, err
	}
	if err := dec.Decode(m); err != nil {
		return raw, fmt.Errorf("%w: %s: %v", types.ErrInvalidRuleTree, path, err)
	}
	return raw, nil
}

// decodeData returns nil when the data map carries no recognized override.
func decodeData(m map[string]any) (*types.RuleData, error) {
	data := &types.RuleData{}
	found := false

	if f, ok := m["field"]; ok {
		found = true
		switch v := f.(type) {
		case string:
			data.Field = types.LiteralField(v)
		case map[string]any:
			src, ok := exprSource(v)
			if !ok {
				return nil, fmt.Errorf("field override must be a string or {expr: ...}")
			}
			computed, err := CompileFieldExpr(src)
			if err != nil {
				return nil, err
			}
			data.Field = computed
		default:
			return nil, fmt.Errorf("field override must be a string or {expr: ...}, got %T", f)
		}
	}

	if v, ok := m["value"]; ok {
		found = true
		if obj, isObj := v.(map[string]any); isObj {
			if src, ok := exprSource(obj); ok {
				computed, err := CompileValueExpr(src)
				if err != nil {
					return nil, err
				}
				data.Value = computed
			} else {
				data.Value = types.LiteralValue{V: v}
			}
		} else {
			data.Value = types.LiteralValue{V: v}
		}
	}

	if t, ok := m["transform"]; ok {
		name, isString := t.(string)
		if !isString {
			return nil, fmt.Errorf("transform must be a name, got %T", t)
		}
		found = true
		data.Transform = name
	}

	if !found {
		return nil, nil
	}
	return data, nil
}

// exprSource recognizes the {"expr": "<source>"} form.
func exprSource(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	src, ok := m["expr"].(string)
	return src, ok
}
