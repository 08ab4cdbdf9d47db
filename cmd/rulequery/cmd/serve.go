package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/rulequery/internal/core/api"
	"github.com/solatis/rulequery/internal/core/auth"
	"github.com/solatis/rulequery/internal/core/config"
	"github.com/solatis/rulequery/internal/core/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start gRPC translator service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}
	d := config.DefaultConfig()
	cmd.Flags().String("host", d.Server.Host, "gRPC server host")
	cmd.Flags().Int("port", d.Server.Port, "gRPC server port")
	addTranslatorFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, g *globalFlags) error {
	logger, err := g.logger(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(g.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, queries, err := g.openQueries()
	if err != nil {
		return err
	}
	defer database.Close()

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set RQ_HMAC_SECRET environment variable)")
	}

	authenticator := auth.NewAuthenticator(secrets, queries, logger)

	translator, err := newTranslator(cfg, logger)
	if err != nil {
		return err
	}

	service, err := api.NewTranslatorService(translator, queries, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting rulequery translator service",
		"version", Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return grpcServer.Shutdown(shutdownCtx)
	}
}
