package api

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/solatis/rulequery/internal/core/auth"
	"github.com/solatis/rulequery/internal/core/db"
	"github.com/solatis/rulequery/internal/rules"
	"github.com/solatis/rulequery/internal/types"
)

// BuildBoolQuery translates the request tree to an Elasticsearch bool query.
func (s *TranslatorService) BuildBoolQuery(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	clientID := auth.ClientIDFromContext(ctx)
	if clientID == "" {
		return nil, status.Error(codes.Internal, "missing client_id in context")
	}

	start := time.Now()
	var out *structpb.Struct
	stats, err := s.translate(ctx, req, func(node *types.RuleNode) error {
		doc, err := s.translator.BuildBoolQuery(node)
		if err != nil {
			return err
		}
		out, err = documentToStruct(doc)
		return err
	})
	s.record(ctx, clientID, db.KindBool, stats, start, err)
	if err != nil {
		return nil, statusError(err)
	}
	return out, nil
}

// BuildQueryString translates the request tree to query-string text.
func (s *TranslatorService) BuildQueryString(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	clientID := auth.ClientIDFromContext(ctx)
	if clientID == "" {
		return nil, status.Error(codes.Internal, "missing client_id in context")
	}

	start := time.Now()
	var out string
	stats, err := s.translate(ctx, req, func(node *types.RuleNode) error {
		var err error
		out, err = s.translator.BuildQueryString(node)
		return err
	})
	s.record(ctx, clientID, db.KindQueryString, stats, start, err)
	if err != nil {
		return nil, statusError(err)
	}
	return wrapperspb.String(out), nil
}

// translate decodes, resolves and validates the request tree, then runs emit on it.
// An empty request selects the translator's rule source.
func (s *TranslatorService) translate(ctx context.Context, req *structpb.Struct, emit func(*types.RuleNode) error) (rules.TreeStats, error) {
	var node *types.RuleNode
	if len(req.GetFields()) > 0 {
		decoded, err := rules.DecodeTree(req.AsMap())
		if err != nil {
			return rules.TreeStats{}, err
		}
		node = decoded
	}

	node, err := s.translator.Resolve(node)
	if err != nil {
		return rules.TreeStats{}, err
	}
	stats, err := rules.Validate(node, s.limits)
	if err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, emit(node)
}

// record appends an audit row. Failures are logged, never returned:
// the caller already has its answer.
func (s *TranslatorService) record(ctx context.Context, clientID types.ClientID, kind db.TranslationKind, stats rules.TreeStats, start time.Time, err error) {
	t := db.Translation{
		ID:         string(types.NewTranslationID()),
		ClientID:   string(clientID),
		Kind:       kind,
		Status:     outcome(err),
		LeafCount:  stats.Leaves,
		DurationUs: time.Since(start).Microseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		t.ErrorMessage = err.Error()
		s.logger.Warn("translation failed",
			"client_id", clientID,
			"kind", kind,
			"error", err,
		)
	}

	// Request cancellation must not drop the audit row
	if insertErr := s.audit.InsertTranslation(context.WithoutCancel(ctx), t); insertErr != nil {
		s.logger.Warn("failed to record translation",
			"translation_id", t.ID,
			"error", insertErr,
		)
	}
}

// documentToStruct round-trips through JSON; structpb.NewStruct rejects []string.
func documentToStruct(doc types.Document) (*structpb.Struct, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
