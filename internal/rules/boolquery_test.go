// internal/rules/boolquery_test.go
package rules

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/solatis/rulequery/internal/types"
)

func leaf(field, operator string, value any) types.Entry {
	return types.RuleEntry(&types.Rule{Field: field, Operator: operator, Value: value})
}

func group(condition string, entries ...types.Entry) types.Entry {
	return types.GroupEntry(&types.RuleNode{Condition: condition, Rules: entries})
}

func TestBuildBoolQuery_Shapes(t *testing.T) {
	tests := []struct {
		name string
		node *types.RuleNode
		want types.Document
	}{
		{
			name: "not_equal under OR keeps negation",
			node: &types.RuleNode{Condition: "OR", Rules: []types.Entry{leaf("a", "not_equal", "x")}},
			want: types.Document{"bool": map[string]any{
				"should": []any{
					map[string]any{"bool": map[string]any{
						"must_not": []any{map[string]any{"term": map[string]any{"a": "x"}}},
					}},
				},
			}},
		},
		{
			name: "between range",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{leaf("age", "between", []any{18, 30})}},
			want: types.Document{"bool": map[string]any{
				"must": []any{map[string]any{"range": map[string]any{"age": map[string]any{"gte": 18, "lte": 30}}}},
			}},
		},
		{
			name: "in splits into terms",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{leaf("tag", "in", "a, b ,c")}},
			want: types.Document{"bool": map[string]any{
				"must": []any{map[string]any{"terms": map[string]any{"tag": []string{"a", "b", "c"}}}},
			}},
		},
		{
			name: "existence operators are not field-keyed",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{
				leaf("name", "is_null", nil),
				leaf("email", "is_not_null", nil),
			}},
			want: types.Document{"bool": map[string]any{
				"must_not": []any{map[string]any{"exists": map[string]any{"field": "name"}}},
				"must":     []any{map[string]any{"exists": map[string]any{"field": "email"}}},
			}},
		},
		{
			name: "same bucket appends in order",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{
				leaf("a", "equal", 1),
				leaf("b", "begins_with", "x"),
				leaf("a", "equal", 1),
			}},
			want: types.Document{"bool": map[string]any{
				"must": []any{
					map[string]any{"term": map[string]any{"a": 1}},
					map[string]any{"wildcard": map[string]any{"b": "x*"}},
					map[string]any{"term": map[string]any{"a": 1}},
				},
			}},
		},
		{
			name: "nested group appended whole",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{
				group("OR", leaf("c", "equal", "x"), leaf("c", "equal", "y")),
				leaf("d", "less", 3),
			}},
			want: types.Document{"bool": map[string]any{
				"must": []any{
					map[string]any{"bool": map[string]any{
						"should": []any{
							map[string]any{"term": map[string]any{"c": "x"}},
							map[string]any{"term": map[string]any{"c": "y"}},
						},
					}},
					map[string]any{"range": map[string]any{"d": map[string]any{"lt": 3}}},
				},
			}},
		},
		{
			name: "absent rules",
			node: &types.RuleNode{Condition: "AND"},
			want: types.Document{"bool": map[string]any{}},
		},
		{
			name: "empty rules",
			node: &types.RuleNode{Condition: "OR", Rules: []types.Entry{}},
			want: types.Document{"bool": map[string]any{}},
		},
	}

	tr := NewTranslator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.BuildBoolQuery(tt.node)
			if err != nil {
				t.Fatalf("BuildBoolQuery() error = %v, want nil", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildBoolQuery() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBuildBoolQuery_ConditionHandling(t *testing.T) {
	node := &types.RuleNode{Rules: []types.Entry{leaf("a", "equal", "x")}}

	got, err := NewTranslator(nil, WithDefaultCondition(types.ConditionOr)).BuildBoolQuery(node)
	if err != nil {
		t.Fatalf("BuildBoolQuery() error = %v, want nil", err)
	}
	if _, ok := got["bool"].(map[string]any)["should"]; !ok {
		t.Errorf("default OR condition not applied: %v", got)
	}

	lower := &types.RuleNode{Condition: "or", Rules: []types.Entry{leaf("a", "not_equal", "x")}}
	got, err = NewTranslator(nil).BuildBoolQuery(lower)
	if err != nil {
		t.Fatalf("BuildBoolQuery() error = %v, want nil", err)
	}
	should := got["bool"].(map[string]any)["should"].([]any)
	if _, wrapped := should[0].(map[string]any)["bool"]; !wrapped {
		t.Errorf("lower-case or not treated as OR: %v", got)
	}
}

func TestBuildBoolQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		node    *types.RuleNode
		wantErr error
	}{
		{
			name:    "invalid condition",
			node:    &types.RuleNode{Condition: "XOR", Rules: []types.Entry{leaf("a", "equal", 1)}},
			wantErr: types.ErrInvalidCondition,
		},
		{
			name:    "invalid condition on empty node",
			node:    &types.RuleNode{Condition: "NAND"},
			wantErr: types.ErrInvalidCondition,
		},
		{
			name:    "invalid nested condition",
			node:    &types.RuleNode{Condition: "AND", Rules: []types.Entry{group("MAYBE", leaf("a", "equal", 1))}},
			wantErr: types.ErrInvalidCondition,
		},
		{
			name: "unknown operator after valid siblings",
			node: &types.RuleNode{Condition: "AND", Rules: []types.Entry{
				leaf("a", "equal", 1),
				leaf("b", "regexp", "x.*"),
			}},
			wantErr: types.ErrUnsupportedOperator,
		},
		{
			name:    "unknown operator in nested group",
			node:    &types.RuleNode{Condition: "AND", Rules: []types.Entry{group("OR", leaf("a", "fuzzy", "x"))}},
			wantErr: types.ErrUnsupportedOperator,
		},
		{
			name:    "empty nested group is a leaf without operator",
			node:    &types.RuleNode{Condition: "AND", Rules: []types.Entry{group("OR")}},
			wantErr: types.ErrUnsupportedOperator,
		},
		{
			name:    "bad between operand",
			node:    &types.RuleNode{Condition: "AND", Rules: []types.Entry{leaf("a", "between", 3)}},
			wantErr: types.ErrInvalidValue,
		},
	}

	tr := NewTranslator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.BuildBoolQuery(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildBoolQuery() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("BuildBoolQuery() = %v, want no partial output", got)
			}
		})
	}
}

func TestBuildBoolQuery_DepthLimit(t *testing.T) {
	node := &types.RuleNode{Condition: "AND", Rules: []types.Entry{leaf("a", "equal", 1)}}
	for i := 0; i < 4; i++ {
		node = &types.RuleNode{Condition: "OR", Rules: []types.Entry{types.GroupEntry(node)}}
	}

	// 5 levels in total
	if _, err := NewTranslator(nil, WithMaxDepth(5)).BuildBoolQuery(node); err != nil {
		t.Errorf("BuildBoolQuery() at max depth error = %v, want nil", err)
	}
	if _, err := NewTranslator(nil, WithMaxDepth(4)).BuildBoolQuery(node); !errors.Is(err, types.ErrTreeTooDeep) {
		t.Errorf("BuildBoolQuery() past max depth error = %v, want ErrTreeTooDeep", err)
	}
}

func TestBuildBoolQuery_Golden(t *testing.T) {
	data, err := os.ReadFile("testdata/trees/products.json")
	if err != nil {
		t.Fatal(err)
	}
	node, err := ParseTree(data)
	if err != nil {
		t.Fatalf("ParseTree() error = %v", err)
	}

	doc, err := NewTranslator(nil).BuildBoolQuery(node)
	if err != nil {
		t.Fatalf("BuildBoolQuery() error = %v", err)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "products_bool", append(out, '\n'))
}
