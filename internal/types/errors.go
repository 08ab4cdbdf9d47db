package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for translation. Any of them aborts the whole translation.
var (
	// ErrInvalidCondition indicates a group condition other than AND/OR.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnsupportedOperator indicates an operator absent from the active operator table.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnknownOperatorType indicates the operator-type catalog has no entry (no arity).
	ErrUnknownOperatorType = errors.New("unknown operator type")

	// ErrInvalidValue indicates an operand whose shape the operator cannot transform.
	ErrInvalidValue = errors.New("invalid operand value")

	// ErrUnknownTransform indicates rule data naming an unregistered value transform.
	ErrUnknownTransform = errors.New("unknown value transform")

	// ErrTreeTooDeep indicates group nesting beyond the configured maximum depth.
	ErrTreeTooDeep = errors.New("rule tree exceeds maximum depth")

	// ErrInvalidRuleTree indicates input that cannot be decoded into a rule tree.
	ErrInvalidRuleTree = errors.New("invalid rule tree")

	// ErrCoercionFailed indicates a value that cannot be converted to the rule's declared type.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrTooManyRules indicates a tree with more leaves than the configured limit.
	ErrTooManyRules = errors.New("rule tree exceeds maximum rule count")

	// ErrTooManyValues indicates an in/not_in list longer than MaxListValues.
	ErrTooManyValues = errors.New("value list exceeds maximum length")

	// ErrFieldTooLong indicates a field name longer than MaxFieldLength.
	ErrFieldTooLong = errors.New("field name exceeds maximum length")
)

// ConditionError reports the offending condition. Unwraps to ErrInvalidCondition.
type ConditionError struct {
	Condition string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s %q (expected AND or OR)", ErrInvalidCondition, e.Condition)
}

func (e *ConditionError) Unwrap() error { return ErrInvalidCondition }

// OperatorError reports the operator a lookup or transform failed for.
type OperatorError struct {
	Operator string
	Err      error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %q: %v", e.Operator, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }
