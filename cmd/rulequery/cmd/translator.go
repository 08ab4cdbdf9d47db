package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/solatis/rulequery/internal/core/config"
	"github.com/solatis/rulequery/internal/rules"
)

// addTranslatorFlags registers the flags LoadConfig binds for translation settings.
func addTranslatorFlags(fs *pflag.FlagSet) {
	d := config.DefaultConfig()
	fs.String("default-condition", string(d.Translator.DefaultCondition), "condition for groups without one (AND, OR)")
	fs.Int("max-depth", d.Translator.MaxDepth, "maximum group nesting depth")
	fs.Int("max-rules", d.Server.MaxRules, "maximum rules per tree")
	fs.String("rules-file", "", "rule tree used when no tree is given (JSON or YAML)")
}

// newTranslator builds the translator described by cfg.
func newTranslator(cfg *config.Config, logger *slog.Logger) (*rules.Translator, error) {
	opts, err := rules.TransformOptions(cfg.Translator.Transforms)
	if err != nil {
		return nil, err
	}
	reg := rules.NewRegistry(opts...)

	source := rules.StaticSource{}
	if path := cfg.Translator.DefaultRulesFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
		node, err := rules.ParseTree(data)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
		source.Node = node
	}

	return rules.NewTranslator(reg,
		rules.WithRuleSource(source),
		rules.WithDefaultCondition(cfg.Translator.DefaultCondition),
		rules.WithMaxDepth(cfg.Translator.MaxDepth),
		rules.WithLogger(logger),
	), nil
}

func limitsFor(cfg *config.Config) rules.Limits {
	return rules.Limits{
		MaxDepth: cfg.Translator.MaxDepth,
		MaxRules: cfg.Server.MaxRules,
	}
}
