package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/solatis/rulequery/internal/core/db"
	"github.com/solatis/rulequery/internal/core/logging"
)

const Version = "0.1.0"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "rulequery",
		Short:        "Rule tree to Elasticsearch query translator",
		Long:         `rulequery translates rule-editor condition trees into Elasticsearch bool queries and query strings.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&g.dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "json", "log format (json, text)")

	root.AddCommand(
		newServeCmd(g),
		newTranslateCmd(g),
		newMigrateCmd(g),
		newKeysCmd(g),
		newHistoryCmd(g),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// logger writes to the command's stderr so stdout stays clean for results.
func (g *globalFlags) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(g.logLevel, g.logFormat, cmd.ErrOrStderr())
}

// openDB opens --db-url. Callers close the returned handle.
func (g *globalFlags) openDB() (*sqlx.DB, error) {
	if g.dbURL == "" {
		return nil, fmt.Errorf("--db-url required")
	}
	database, err := db.Open(g.dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// openQueries opens the database, checks its schema is current and loads named queries.
func (g *globalFlags) openQueries() (*sqlx.DB, *db.Queries, error) {
	database, err := g.openDB()
	if err != nil {
		return nil, nil, err
	}
	if err := db.RequireMigrated(database); err != nil {
		database.Close()
		return nil, nil, err
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, queries, nil
}
