package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/rulequery/internal/core/config"
	"github.com/solatis/rulequery/internal/rules"
	"github.com/solatis/rulequery/internal/types"
)

const (
	targetBool        = "bool"
	targetQueryString = "querystring"
)

func newTranslateCmd(g *globalFlags) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a rule tree read from a file or stdin",
		Long: `Translate a rule tree (JSON or YAML) and print the result.

With no file, or "-", the tree is read from stdin. Empty input selects
the tree given by --rules-file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, g, target, args)
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", targetBool, "output form (bool, querystring)")
	addTranslatorFlags(cmd.Flags())
	return cmd
}

func runTranslate(cmd *cobra.Command, g *globalFlags, target string, args []string) error {
	if target != targetBool && target != targetQueryString {
		return fmt.Errorf("invalid --target %q (expected %s, %s)", target, targetBool, targetQueryString)
	}

	logger, err := g.logger(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(g.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	translator, err := newTranslator(cfg, logger)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	var node *types.RuleNode
	if len(bytes.TrimSpace(data)) > 0 {
		if node, err = rules.ParseTree(data); err != nil {
			return err
		}
	}

	node, err = translator.Resolve(node)
	if err != nil {
		return err
	}
	if _, err := rules.Validate(node, limitsFor(cfg)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if target == targetQueryString {
		s, err := translator.BuildQueryString(node)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		return err
	}

	doc, err := translator.BuildBoolQuery(node)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}
