package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeforge/pipeforge/internal/model"
)

func validPipeline() *model.PipelineDefinition {
	def := model.NewPipelineDefinition()
	def.Name = "Demo"
	def.SchemaVersion = 1
	def.Stages = []model.PipelineStage{
		{
			Name:  "build",
			Steps: []model.PipelineStep{model.NewPipelineStep("compile", "go build")},
		},
	}
	return def
}

func TestValidPipelineHasNoErrors(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	result := v.Validate(validPipeline())
	assert.False(t, result.HasErrors(), "messages: %v", result.Messages)
}

func TestZeroStagesIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := model.NewPipelineDefinition()
	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestDuplicateStageNameIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages = append(def.Stages, def.Stages[0])

	result := v.Validate(def)
	require.True(t, result.HasErrors())

	found := false
	for _, m := range result.Messages {
		if m.Severity == Error && strings.Contains(m.Text, "Duplicate stage name") {
			found = true
		}
	}
	assert.True(t, found, "expected a 'Duplicate stage name' error message")
}

func TestUndeclaredVariableReferenceIsWarningNotError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps[0].Arguments = "${MISSING_VAR}"

	result := v.Validate(def)
	assert.False(t, result.HasErrors())

	found := false
	for _, m := range result.Messages {
		if m.Severity == Warning && strings.Contains(m.Text, "MISSING_VAR") {
			found = true
		}
	}
	assert.True(t, found, "expected a warning naming MISSING_VAR")
}

func TestBuiltinVariableReferenceDoesNotWarn(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps[0].Arguments = "${PIPEFORGE_RUN_ID}"

	result := v.Validate(def)
	for _, m := range result.Messages {
		assert.NotContains(t, m.Text, "PIPEFORGE_RUN_ID")
	}
}

func TestEmptyStepCommandIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps[0].Command = ""

	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestNonPositiveTimeoutIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps[0].TimeoutSeconds = 0

	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestInvalidWhenExpressionIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps[0].Condition = &model.StepCondition{Expression: `vars["x"] ==`}

	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestNegativeDebounceIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.WatchTriggers = []model.WatchTrigger{{Path: ".", DebounceMS: -1}}

	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestEmptyWatchPathIsError(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.WatchTriggers = []model.WatchTrigger{{Path: "", DebounceMS: 500}}

	result := v.Validate(def)
	require.True(t, result.HasErrors())
}

func TestDuplicateStepNameWithinStageIsWarning(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	def := validPipeline()
	def.Stages[0].Steps = append(def.Stages[0].Steps, def.Stages[0].Steps[0])

	result := v.Validate(def)
	assert.False(t, result.HasErrors())

	found := false
	for _, m := range result.Messages {
		if m.Severity == Warning && strings.Contains(m.Text, "duplicated") {
			found = true
		}
	}
	assert.True(t, found)
}
