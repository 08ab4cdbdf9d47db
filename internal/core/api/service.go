// Package api provides the gRPC Translator service.
package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solatis/rulequery/internal/core/config"
	"github.com/solatis/rulequery/internal/core/db"
	"github.com/solatis/rulequery/internal/rules"
)

// AuditLog records translation outcomes. Implemented by *db.Queries.
type AuditLog interface {
	InsertTranslation(ctx context.Context, t db.Translation) error
}

// TranslatorService implements TranslatorServer.
// Thin orchestration layer delegating to the rules and db packages.
type TranslatorService struct {
	translator *rules.Translator
	audit      AuditLog
	limits     rules.Limits
	logger     *slog.Logger
}

var _ TranslatorServer = (*TranslatorService)(nil)

// NewTranslatorService creates service instance with dependencies.
func NewTranslatorService(translator *rules.Translator, audit AuditLog, cfg *config.Config, logger *slog.Logger) (*TranslatorService, error) {
	if translator == nil {
		return nil, fmt.Errorf("translator cannot be nil")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TranslatorService{
		translator: translator,
		audit:      audit,
		limits: rules.Limits{
			MaxDepth: cfg.Translator.MaxDepth,
			MaxRules: cfg.Server.MaxRules,
		},
		logger: logger,
	}, nil
}
