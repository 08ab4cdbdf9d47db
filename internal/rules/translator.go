// internal/rules/translator.go
package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solatis/rulequery/internal/types"
)

// RuleSource supplies the host's current rule tree (getRules).
// Used when a translation is requested without an explicit node.
type RuleSource interface {
	Rules() (*types.RuleNode, error)
}

// RuleSourceFunc adapts a function to RuleSource.
type RuleSourceFunc func() (*types.RuleNode, error)

// Rules implements RuleSource.
func (f RuleSourceFunc) Rules() (*types.RuleNode, error) { return f() }

// StaticSource always returns the same tree.
type StaticSource struct {
	Node *types.RuleNode
}

// Rules implements RuleSource.
func (s StaticSource) Rules() (*types.RuleNode, error) {
	if s.Node == nil {
		return &types.RuleNode{}, nil
	}
	return s.Node, nil
}

// Translator exposes both emitters over one registry.
// Safe for concurrent use; it holds no per-call state.
type Translator struct {
	registry         *Registry
	source           RuleSource
	defaultCondition types.Condition
	maxDepth         int
	logger           *slog.Logger
}

// TranslatorOption customizes a Translator.
type TranslatorOption func(*Translator)

// WithRuleSource sets the tree used when no node is passed.
func WithRuleSource(src RuleSource) TranslatorOption {
	return func(t *Translator) { t.source = src }
}

// WithDefaultCondition sets the condition substituted for groups that have none.
func WithDefaultCondition(c types.Condition) TranslatorOption {
	return func(t *Translator) { t.defaultCondition = c }
}

// WithMaxDepth bounds group nesting.
func WithMaxDepth(depth int) TranslatorOption {
	return func(t *Translator) { t.maxDepth = depth }
}

// WithLogger sets the logger for per-translation debug output.
func WithLogger(l *slog.Logger) TranslatorOption {
	return func(t *Translator) { t.logger = l }
}

// NewTranslator creates a translator. A nil registry means NewRegistry().
func NewTranslator(reg *Registry, opts ...TranslatorOption) *Translator {
	if reg == nil {
		reg = NewRegistry()
	}
	t := &Translator{
		registry:         reg,
		source:           StaticSource{},
		defaultCondition: types.ConditionAnd,
		maxDepth:         types.MaxTreeDepth,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry returns the registry the translator was built with.
func (t *Translator) Registry() *Registry {
	return t.registry
}

// BuildBoolQuery translates node (or the source's tree when nil) to a bool-query document.
// The result always has a single top-level "bool" key.
func (t *Translator) BuildBoolQuery(node *types.RuleNode) (types.Document, error) {
	node, err := t.Resolve(node)
	if err != nil {
		return nil, err
	}
	doc, err := buildBool(t.walker(), node, 1)
	if err != nil {
		t.logger.Debug("bool query translation failed", "error", err)
		return nil, err
	}
	t.logTranslated("bool query translated", node)
	return types.Document(doc), nil
}

// BuildQueryString translates node (or the source's tree when nil) to query-string text.
func (t *Translator) BuildQueryString(node *types.RuleNode) (string, error) {
	node, err := t.Resolve(node)
	if err != nil {
		return "", err
	}
	s, err := buildQueryString(t.walker(), node, 1)
	if err != nil {
		t.logger.Debug("query string translation failed", "error", err)
		return "", err
	}
	t.logTranslated("query string translated", node, "length", len(s))
	return s, nil
}

// logTranslated logs the tree shape at debug level. The walk is skipped when debug is off.
func (t *Translator) logTranslated(msg string, node *types.RuleNode, attrs ...any) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	stats := Stats(node)
	attrs = append(attrs, "groups", stats.Groups, "leaves", stats.Leaves, "depth", stats.Depth)
	t.logger.Debug(msg, attrs...)
}

// Resolve returns node, or the rule source's tree when node is nil.
func (t *Translator) Resolve(node *types.RuleNode) (*types.RuleNode, error) {
	if node != nil {
		return node, nil
	}
	node, err := t.source.Rules()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if node == nil {
		return &types.RuleNode{}, nil
	}
	return node, nil
}

func (t *Translator) walker() *walker {
	return &walker{
		reg:              t.registry,
		defaultCondition: t.defaultCondition,
		maxDepth:         t.maxDepth,
	}
}
