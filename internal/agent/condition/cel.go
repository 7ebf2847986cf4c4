// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Evaluator evaluates overlay rule conditions written in CEL. Conditions
// see three request facts: the raw request text, the classified intent,
// and the resolved task type.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a CEL evaluator for overlay conditions
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("request", cel.StringType),
		cel.Variable("intent", cel.StringType),
		cel.Variable("task_type", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// Evaluate runs a condition against the request facts
func (e *Evaluator) Evaluate(expression string, request, intent, taskType string) (bool, error) {
	ast, issues := e.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("error parsing condition: %w", issues.Err())
	}

	checked, issues := e.env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("error type-checking condition: %w", issues.Err())
	}

	program, err := e.env.Program(checked)
	if err != nil {
		return false, fmt.Errorf("error compiling condition: %w", err)
	}

	result, _, err := program.Eval(map[string]interface{}{
		"request":   request,
		"intent":    intent,
		"task_type": taskType,
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating condition: %w", err)
	}

	if result.Type() != types.BoolType {
		return false, fmt.Errorf("condition did not evaluate to a boolean")
	}

	return result.Value().(bool), nil
}
