package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solatis/rulequery/internal/core/auth"
	"github.com/solatis/rulequery/internal/core/config"
	"github.com/solatis/rulequery/internal/core/db"
)

func newKeysCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newKeysCreateCmd(g), newKeysListCmd(g), newKeysRevokeCmd(g))
	return cmd
}

func newKeysCreateCmd(g *globalFlags) *cobra.Command {
	var clientID, name, secretID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an API key; the key is printed once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secrets, err := config.HMACSecrets()
			if err != nil {
				return fmt.Errorf("failed to load HMAC secrets: %w", err)
			}
			signingID, secret, err := pickSecret(secrets, secretID)
			if err != nil {
				return err
			}

			database, queries, err := g.openQueries()
			if err != nil {
				return err
			}
			defer database.Close()

			key, hash, err := auth.GenerateAPIKey(signingID, secret)
			if err != nil {
				return err
			}
			record := db.APIKey{
				ID:        uuid.Must(uuid.NewV7()).String(),
				ClientID:  clientID,
				Name:      name,
				SecretID:  signingID,
				CreatedAt: time.Now().UTC(),
			}
			if err := queries.InsertAPIKey(cmd.Context(), record, hash); err != nil {
				return fmt.Errorf("failed to store API key: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api_key_id: %s\n", record.ID)
			fmt.Fprintf(out, "client_id:  %s\n", record.ClientID)
			fmt.Fprintf(out, "api_key:    %s\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client the key is issued to")
	cmd.Flags().StringVar(&name, "name", "", "human-readable key name")
	cmd.Flags().StringVar(&secretID, "secret-id", "", "HMAC secret to sign with (required when several are configured)")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("name")
	return cmd
}

// pickSecret selects the signing secret. With one secret configured the id is optional.
func pickSecret(secrets map[string][]byte, secretID string) (string, []byte, error) {
	if len(secrets) == 0 {
		return "", nil, fmt.Errorf("no HMAC secrets configured (set RQ_HMAC_SECRET environment variable)")
	}
	if secretID != "" {
		secret, ok := secrets[secretID]
		if !ok {
			return "", nil, fmt.Errorf("unknown secret id %q", secretID)
		}
		return secretID, secret, nil
	}
	if len(secrets) > 1 {
		ids := make([]string, 0, len(secrets))
		for id := range secrets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return "", nil, fmt.Errorf("several HMAC secrets configured, choose one with --secret-id: %v", ids)
	}
	var id string
	for k := range secrets {
		id = k
	}
	return id, secrets[id], nil
}

func newKeysListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, queries, err := g.openQueries()
			if err != nil {
				return err
			}
			defer database.Close()

			keys, err := queries.ListAPIKeys(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLIENT\tNAME\tCREATED\tLAST USED\tREVOKED")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					k.ID, k.ClientID, k.Name,
					k.CreatedAt.UTC().Format(time.RFC3339),
					formatNullTime(k.LastUsedAt.Valid, k.LastUsedAt.Time),
					formatNullTime(k.RevokedAt.Valid, k.RevokedAt.Time),
				)
			}
			return w.Flush()
		},
	}
}

func newKeysRevokeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <api-key-id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, queries, err := g.openQueries()
			if err != nil {
				return err
			}
			defer database.Close()

			ok, err := queries.RevokeAPIKey(cmd.Context(), args[0], time.Now())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("api key %s not found or already revoked", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
			return nil
		},
	}
}

func formatNullTime(valid bool, t time.Time) string {
	if !valid {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
