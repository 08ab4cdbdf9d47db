// internal/rules/decode_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/rulequery/internal/types"
)

func TestParseTree_JSON(t *testing.T) {
	doc := `{
	  "condition": "AND",
	  "rules": [
	    {"id": "price", "field": "price", "type": "double", "input": "number", "operator": "less", "value": 10.25},
	    {"condition": "OR", "rules": [
	      {"id": "category", "field": "category", "operator": "equal", "value": 2}
	    ]}
	  ],
	  "valid": true
	}`

	node, err := ParseTree([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "AND", node.Condition)
	require.Len(t, node.Rules, 2)

	first := node.Rules[0]
	require.False(t, first.IsGroup())
	assert.Equal(t, &types.Rule{
		ID: "price", Field: "price", Type: "double", Input: "number", Operator: "less", Value: 10.25,
	}, first.Rule)

	second := node.Rules[1]
	require.True(t, second.IsGroup())
	assert.Equal(t, "OR", second.Group.Condition)
	assert.Equal(t, 2.0, second.Group.Rules[0].Rule.Value)
}

func TestParseTree_YAML(t *testing.T) {
	doc := `
condition: or
rules:
  - field: name
    operator: is_null
  - field: tags
    operator: in
    value: "a, b"
`
	node, err := ParseTree([]byte(doc))
	require.NoError(t, err)

	got, err := NewTranslator(nil).BuildQueryString(&types.RuleNode{Condition: node.Condition, Rules: node.Rules[:1]})
	require.NoError(t, err)
	assert.Equal(t, "_missing_:name", got)

	assert.Equal(t, "or", node.Condition)
	assert.Equal(t, "a, b", node.Rules[1].Rule.Value)
}

func TestParseTree_RuleData(t *testing.T) {
	doc := `{"condition": "AND", "rules": [
	  {"field": "name", "operator": "equal", "value": "x", "data": {"field": "name.keyword"}},
	  {"field": "title", "operator": "equal", "value": "y", "data": {"field": {"expr": "field + '.raw'"}}},
	  {"field": "qty", "operator": "greater", "value": 3, "data": {"value": {"expr": "value * 2"}}},
	  {"field": "tag", "operator": "equal", "value": "z", "data": {"value": {"lang": "en"}}},
	  {"field": "age", "operator": "less", "value": "30", "type": "integer", "data": {"transform": "typed"}},
	  {"field": "n", "operator": "equal", "value": 1, "data": {"label": "ignored"}}
	]}`

	node, err := ParseTree([]byte(doc))
	require.NoError(t, err)

	doc2, err := NewTranslator(nil).BuildBoolQuery(node)
	require.NoError(t, err)

	want := types.Document{"bool": map[string]any{
		"must": []any{
			map[string]any{"term": map[string]any{"name.keyword": "x"}},
			map[string]any{"term": map[string]any{"title.raw": "y"}},
			map[string]any{"range": map[string]any{"qty": map[string]any{"gt": 6.0}}},
			map[string]any{"term": map[string]any{"tag": map[string]any{"lang": "en"}}},
			map[string]any{"range": map[string]any{"age": map[string]any{"lt": int64(30)}}},
			map[string]any{"term": map[string]any{"n": 1.0}},
		},
	}}
	assert.Equal(t, want, doc2)
	assert.Nil(t, node.Rules[5].Rule.Data, "data without recognized keys decodes to nil")
}

func TestParseTree_Errors(t *testing.T) {
	deep := strings.Repeat(`{"rules": [`, types.MaxTreeDepth+1) + `{"field": "a", "operator": "equal", "value": 1}` +
		strings.Repeat(`]}`, types.MaxTreeDepth+1)

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"empty", "  \n", types.ErrInvalidRuleTree},
		{"malformed json", `{"condition": `, types.ErrInvalidRuleTree},
		{"top-level list", "- a\n- b\n", types.ErrInvalidRuleTree},
		{"rules not a list", `{"rules": 5}`, types.ErrInvalidRuleTree},
		{"field override of wrong type", `{"rules": [{"field": "a", "operator": "equal", "data": {"field": 5}}]}`, types.ErrInvalidRuleTree},
		{"bad expression", `{"rules": [{"field": "a", "operator": "equal", "data": {"field": {"expr": "field +"}}}]}`, types.ErrInvalidRuleTree},
		{"transform not a name", `{"rules": [{"field": "a", "operator": "equal", "data": {"transform": 1}}]}`, types.ErrInvalidRuleTree},
		{"nesting too deep", deep, types.ErrTreeTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := ParseTree([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, node)
		})
	}
}

func TestDecodeTree_NilMap(t *testing.T) {
	_, err := DecodeTree(nil)
	assert.ErrorIs(t, err, types.ErrInvalidRuleTree)
}
