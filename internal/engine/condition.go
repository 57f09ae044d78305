package engine

import (
	"os"
	"strconv"
	"strings"

	"github.com/pipeforge/pipeforge/internal/condition"
	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/varsubst"
)

// truthy mirrors the spec's plain only_if/not_if check: a variable is
// truthy unless it is unset, empty, "0", or "false" (case-insensitive).
func truthy(value string, declared bool) bool {
	if !declared || value == "" {
		return false
	}
	return value != "0" && !strings.EqualFold(value, "false")
}

func filesExist(patterns []string, vars map[string]string) bool {
	for _, pattern := range patterns {
		resolved := varsubst.Resolve(pattern, vars)
		if _, err := os.Stat(resolved); err != nil {
			return false
		}
	}
	return true
}

// evalStageCondition reports whether cond permits the stage to run.
func evalStageCondition(cond *model.StageCondition, vars map[string]string, cel *condition.Evaluator) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if cond.OnlyIf != "" {
		value, declared := vars[cond.OnlyIf]
		if !truthy(value, declared) {
			return false, nil
		}
	}
	if cond.NotIf != "" {
		value, declared := vars[cond.NotIf]
		if truthy(value, declared) {
			return false, nil
		}
	}
	if len(cond.FilesExist) > 0 && !filesExist(cond.FilesExist, vars) {
		return false, nil
	}
	if cond.Expression != "" {
		ok, err := cel.Eval(cond.Expression, vars)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evalStepCondition reports whether cond permits the step to run, given
// the exit code of the most recently completed step (-1 if none).
func evalStepCondition(cond *model.StepCondition, vars map[string]string, cel *condition.Evaluator, previousExitCode int) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if cond.OnlyIf != "" {
		value, declared := vars[cond.OnlyIf]
		if !truthy(value, declared) {
			return false, nil
		}
	}
	if cond.NotIf != "" {
		value, declared := vars[cond.NotIf]
		if truthy(value, declared) {
			return false, nil
		}
	}
	if cond.RequiredExitCode != nil && previousExitCode != *cond.RequiredExitCode {
		return false, nil
	}
	if cond.Expression != "" {
		ok, err := cel.Eval(cond.Expression, vars)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func formatExitCode(code int) string {
	return strconv.Itoa(code)
}
