// Package condition evaluates the optional CEL "when" expressions
// attached to stage and step conditions (SPEC_FULL §3), generalizing the
// spec's plain only_if/not_if truthy checks. Adapted from
// internal/engine/subscription.go's SubscriptionEvaluator in the teacher
// repository, whose event-payload variables become a pipeline run's
// variables here.
package condition

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Evaluator compiles and caches "when" expressions against a
// map[string]string of run variables exposed to CEL as "vars".
type Evaluator struct {
	env   *cel.Env
	cache sync.Map // expression text -> cel.Program
}

// NewEvaluator builds an Evaluator with a single "vars" map variable in
// scope, mirroring the single-purpose CEL environment the teacher builds
// for event filters.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("vars", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile validates that expr is a syntactically and type-correct boolean
// CEL expression, without evaluating it. Used by the validator to turn a
// broken "when" expression into an error (SPEC_FULL §4.2).
func (e *Evaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

// Eval evaluates expr against vars and returns its boolean result.
func (e *Evaluator) Eval(expr string, vars map[string]string) (bool, error) {
	program, err := e.program(expr)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(map[string]interface{}{"vars": vars})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	if result.Type() != types.BoolType {
		return false, fmt.Errorf("expression %q must evaluate to a boolean, got %s", expr, result.Type())
	}
	return result.Value().(bool), nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	if cached, ok := e.cache.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to a boolean, got %s", expr, ast.OutputType())
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build program for %q: %w", expr, err)
	}

	e.cache.Store(expr, program)
	return program, nil
}
