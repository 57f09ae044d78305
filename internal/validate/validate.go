// Package validate implements the static semantic checks described in
// spec §4.2: a pure, side-effect-free pass over a parsed
// model.PipelineDefinition that reports errors and warnings without
// mutating or executing anything.
package validate

import (
	"fmt"

	"github.com/pipeforge/pipeforge/internal/condition"
	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/varsubst"
)

// Severity distinguishes an Error (affects exit code) from a Warning
// (informational only).
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Message is one (severity, location, message) triple.
type Message struct {
	Severity Severity
	Location string
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s: %s", m.Severity, m.Location, m.Text)
}

// Result is the output of validating a pipeline definition.
type Result struct {
	Messages []Message
}

// HasErrors reports whether any message in the result is an Error.
// Warnings never affect this.
func (r Result) HasErrors() bool {
	for _, m := range r.Messages {
		if m.Severity == Error {
			return true
		}
	}
	return false
}

func (r *Result) addError(location, format string, args ...interface{}) {
	r.Messages = append(r.Messages, Message{Severity: Error, Location: location, Text: fmt.Sprintf(format, args...)})
}

func (r *Result) addWarning(location, format string, args ...interface{}) {
	r.Messages = append(r.Messages, Message{Severity: Warning, Location: location, Text: fmt.Sprintf(format, args...)})
}

// Validator runs the static checks. It owns a CEL evaluator so "when"
// expressions can be compile-checked without re-creating the CEL
// environment per call.
type Validator struct {
	cel *condition.Evaluator
}

// New constructs a Validator.
func New() (*Validator, error) {
	evaluator, err := condition.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &Validator{cel: evaluator}, nil
}

// Validate applies every check from spec §4.2 (and the "when"-expression
// compile check from SPEC_FULL §4.2) to def.
func (v *Validator) Validate(def *model.PipelineDefinition) Result {
	var result Result

	v.checkSchemaVersion(def, &result)
	v.checkName(def, &result)
	v.checkStages(def, &result)
	v.checkDuplicateStageNames(def, &result)

	return result
}

func (v *Validator) checkSchemaVersion(def *model.PipelineDefinition, result *Result) {
	switch {
	case def.SchemaVersion == 0:
		result.addWarning("pipeline", "no schema version declared")
	case def.SchemaVersion > model.CurrentSchemaVersion:
		result.addWarning("pipeline", "schema version %d is newer than supported (%d)", def.SchemaVersion, model.CurrentSchemaVersion)
	case def.SchemaVersion < model.CurrentSchemaVersion:
		result.addWarning("pipeline", "schema version %d is older than current (%d)", def.SchemaVersion, model.CurrentSchemaVersion)
	}
}

func (v *Validator) checkName(def *model.PipelineDefinition, result *Result) {
	if def.Name == "" || def.Name == model.DefaultPipelineName {
		result.addWarning("pipeline", "no pipeline name declared")
	}
}

func (v *Validator) checkStages(def *model.PipelineDefinition, result *Result) {
	if len(def.Stages) == 0 {
		result.addError("pipeline", "pipeline has no stages")
		return
	}

	declared := declaredVariables(def)

	for _, trigger := range def.WatchTriggers {
		v.checkWatchTrigger(trigger, result)
	}

	for _, stage := range def.Stages {
		v.checkStage(stage, declared, result)
	}
}

func (v *Validator) checkWatchTrigger(t model.WatchTrigger, result *Result) {
	location := fmt.Sprintf("watch %q", t.Path)
	if t.Path == "" {
		result.addError(location, "watch trigger path is empty")
	}
	if t.DebounceMS < 0 {
		result.addError(location, "debounce_ms must not be negative")
	}
}

func (v *Validator) checkStage(stage model.PipelineStage, declared map[string]bool, result *Result) {
	location := fmt.Sprintf("stage %q", stage.Name)

	if stage.Name == "" || stage.Name == model.DefaultStageName {
		result.addWarning(location, "stage has no explicit name")
	}
	if len(stage.Steps) == 0 {
		result.addError(location, "stage has no steps")
	}

	if stage.Condition != nil {
		v.checkOnlyIfDeclared(location, stage.Condition.OnlyIf, declared, result)
		v.checkWhenExpression(location, stage.Condition.Expression, result)
	}

	seenStepNames := make(map[string]int)
	for _, step := range stage.Steps {
		seenStepNames[step.Name]++
		v.checkStep(location, step, declared, result)
	}
	for name, count := range seenStepNames {
		if name != "" && count > 1 {
			result.addWarning(location, "step name %q is duplicated within the stage", name)
		}
	}
}

func (v *Validator) checkStep(stageLocation string, step model.PipelineStep, declared map[string]bool, result *Result) {
	location := fmt.Sprintf("%s step %q", stageLocation, step.Name)

	if step.Command == "" {
		result.addError(location, "step has an empty command")
	}
	if step.TimeoutSeconds <= 0 {
		result.addError(location, "step timeout must be positive")
	}

	for _, ref := range varsubst.References(step.Command + " " + step.Arguments) {
		v.checkVariableDeclared(location, ref, declared, result)
	}

	if step.Condition != nil {
		v.checkOnlyIfDeclared(location, step.Condition.OnlyIf, declared, result)
		v.checkWhenExpression(location, step.Condition.Expression, result)
	}
}

func (v *Validator) checkOnlyIfDeclared(location, varName string, declared map[string]bool, result *Result) {
	if varName == "" {
		return
	}
	v.checkVariableDeclared(location, varName, declared, result)
}

func (v *Validator) checkVariableDeclared(location, varName string, declared map[string]bool, result *Result) {
	if declared[varName] || model.IsBuiltinVariable(varName) {
		return
	}
	result.addWarning(location, "references undeclared variable %q", varName)
}

func (v *Validator) checkWhenExpression(location, expr string, result *Result) {
	if expr == "" {
		return
	}
	if err := v.cel.Compile(expr); err != nil {
		result.addError(location, "invalid when expression: %v", err)
	}
}

func (v *Validator) checkDuplicateStageNames(def *model.PipelineDefinition, result *Result) {
	seen := make(map[string]int)
	for _, stage := range def.Stages {
		seen[stage.Name]++
	}
	for name, count := range seen {
		if count > 1 {
			result.addError("pipeline", "Duplicate stage name %q", name)
		}
	}
}

func declaredVariables(def *model.PipelineDefinition) map[string]bool {
	declared := make(map[string]bool, len(def.Variables))
	for k := range def.Variables {
		declared[k] = true
	}
	return declared
}
