package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/rulequery/internal/core/db"
	"github.com/solatis/rulequery/internal/types"
)

// Auth errors are mapped in the auth package interceptor.
// Tree, operator and value errors map to INVALID_ARGUMENT.
// Context timeouts map to DEADLINE_EXCEEDED.
// Everything else is INTERNAL.

var rejections = []error{
	types.ErrInvalidRuleTree,
	types.ErrInvalidCondition,
	types.ErrUnsupportedOperator,
	types.ErrUnknownOperatorType,
	types.ErrInvalidValue,
	types.ErrUnknownTransform,
	types.ErrCoercionFailed,
	types.ErrTreeTooDeep,
	types.ErrTooManyRules,
	types.ErrTooManyValues,
	types.ErrFieldTooLong,
}

func isRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusError converts a translation error to a gRPC status.
func statusError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRejection(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// outcome is the audit status for err.
func outcome(err error) db.TranslationStatus {
	switch {
	case err == nil:
		return db.StatusOK
	case isRejection(err):
		return db.StatusRejected
	default:
		return db.StatusError
	}
}
