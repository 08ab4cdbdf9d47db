// internal/rules/expr.go
package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/solatis/rulequery/internal/types"
)

/*
 * expr-lang backed resolvers.
 *
 * Lets hosts express computed field/value overrides and named value transforms
 * declaratively (rule data `{"expr": "..."}` or config `translator.transforms`)
 * instead of looking functions up by name in ambient scope.
 *
 * Environment visible to expressions:
 *   - id, field, input, operator: the rule's own attributes
 *   - valueType: the rule's type (type is an expr builtin)
 *   - value: the rule's value (for transforms: the resolved value)
 */

func compileExpr(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, err)
	}
	return program, nil
}

func exprEnv(r *types.Rule, value any) map[string]any {
	return map[string]any{
		"id":        r.ID,
		"field":     r.Field,
		"valueType": r.Type,
		"input":     r.Input,
		"operator":  r.Operator,
		"value":     value,
	}
}

// run evaluates program against r. Runtime failures are caller input errors.
func run(program *vm.Program, r *types.Rule, value any) (any, error) {
	out, err := expr.Run(program, exprEnv(r, value))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidValue, err)
	}
	return out, nil
}

// CompileFieldExpr compiles src into a computed field override.
// The expression result is converted to a string.
func CompileFieldExpr(src string) (types.ComputedField, error) {
	program, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return func(r *types.Rule) (string, error) {
		out, err := run(program, r, r.Value)
		if err != nil {
			return "", err
		}
		return cast.ToStringE(out)
	}, nil
}

// CompileValueExpr compiles src into a computed value override.
func CompileValueExpr(src string) (types.ComputedValue, error) {
	program, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return func(r *types.Rule) (any, error) {
		return run(program, r, r.Value)
	}, nil
}

// CompileValueTransform compiles src into a named value transform.
func CompileValueTransform(src string) (ValueTransform, error) {
	program, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return func(value any, r *types.Rule) (any, error) {
		return run(program, r, value)
	}, nil
}

// TransformOptions compiles a name -> expression table into registry options.
func TransformOptions(transforms map[string]string) ([]Option, error) {
	opts := make([]Option, 0, len(transforms))
	for name, src := range transforms {
		t, err := CompileValueTransform(src)
		if err != nil {
			return nil, fmt.Errorf("transform %q: %w", name, err)
		}
		opts = append(opts, WithValueTransform(name, t))
	}
	return opts, nil
}
