// internal/rules/coercion.go
package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * Type coercion for rule values.
 *
 * Rule editors post every input as text, so "42" arrives for an integer filter
 * and "true" never does for a boolean one (radio inputs send real booleans).
 * Coercion converts the operand to the rule's declared type before the
 * operator transform sees it, so range bounds and terms carry JSON numbers.
 *
 * Selected per rule with data.transform = "typed".
 *
 * NaN and infinities have no JSON encoding and are rejected.
 *
 * Type modes:
 *   - integer: strict - numeric strings and integral floats to int64, reject booleans
 *   - double: strict - numeric strings and integers to float64, reject booleans
 *   - boolean: strict - booleans only
 *   - string: lenient - everything rendered as text
 *   - date/time/datetime and unknown types: passthrough (Elasticsearch parses dates)
 *
 * nil is passed through untouched; existence operators carry no value.
 * Slices (between pairs, pre-split lists) are coerced element-wise.
 */

// TypedTransformName is the name the built-in coercing value transform is registered under.
const TypedTransformName = "typed"

// Coerce converts value to vt.
// Returns an error wrapping ErrCoercionFailed for impossible conversions.
func Coerce(value any, vt types.ValueType) (any, error) {
	if value == nil {
		return nil, nil
	}
	if elems, ok := value.([]any); ok {
		out := make([]any, len(elems))
		for i, e := range elems {
			c, err := Coerce(e, vt)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	switch vt {
	case types.ValueTypeInteger:
		return coerceInteger(value)
	case types.ValueTypeDouble:
		return coerceDouble(value)
	case types.ValueTypeBoolean:
		return coerceBoolean(value)
	case types.ValueTypeString:
		return coerceText(value)
	default:
		return value, nil
	}
}

// coerceInteger converts to int64.
// Whitespace-only strings and floats with a fractional part are rejected.
func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return nil, coercionError(value, types.ValueTypeInteger)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, coercionError(value, types.ValueTypeInteger)
		}
		return int64(v), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, coercionError(value, types.ValueTypeInteger)
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, coercionError(value, types.ValueTypeInteger)
		}
		return i, nil
	default:
		i, err := cast.ToInt64E(value)
		if err != nil {
			return nil, coercionError(value, types.ValueTypeInteger)
		}
		return i, nil
	}
}

// coerceDouble converts to float64.
func coerceDouble(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return nil, coercionError(value, types.ValueTypeDouble)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, coercionError(value, types.ValueTypeDouble)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, coercionError(value, types.ValueTypeDouble)
		}
		return f, nil
	default:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, coercionError(value, types.ValueTypeDouble)
		}
		return f, nil
	}
}

// coerceBoolean accepts booleans only, to avoid "true" vs 1 ambiguity.
func coerceBoolean(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return nil, coercionError(value, types.ValueTypeBoolean)
}

func coerceText(value any) (any, error) {
	s, err := cast.ToStringE(value)
	if err != nil {
		return nil, coercionError(value, types.ValueTypeString)
	}
	return s, nil
}

func coercionError(value any, vt types.ValueType) error {
	return fmt.Errorf("%w: %v (%T) to %s", types.ErrCoercionFailed, value, value, vt)
}

// typedValue is the built-in "typed" value transform.
// Comma-separated text for multiple-value operators is split first so each
// element is coerced on its own.
func (r *Registry) typedValue(value any, rule *types.Rule) (any, error) {
	if s, ok := value.(string); ok {
		if ot, found := r.operatorTypes.OperatorByType(rule.Operator); found && ot.Multiple {
			parts := strings.Split(s, ",")
			elems := make([]any, len(parts))
			for i, p := range parts {
				elems[i] = strings.TrimSpace(p)
			}
			value = elems
		}
	}
	return Coerce(value, types.ValueType(rule.Type))
}
