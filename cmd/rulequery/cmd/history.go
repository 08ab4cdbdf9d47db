package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var clientID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent translations for a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			database, queries, err := g.openQueries()
			if err != nil {
				return err
			}
			defer database.Close()

			records, err := queries.ListTranslations(cmd.Context(), clientID, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tSTATUS\tRULES\tDURATION\tCREATED\tERROR")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					r.ID, r.Kind, r.Status, r.LeafCount,
					(time.Duration(r.DurationUs) * time.Microsecond).String(),
					r.CreatedAt.UTC().Format(time.RFC3339),
					r.ErrorMessage,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client to show translations for")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records")
	cmd.MarkFlagRequired("client")
	return cmd
}
