// Package engine implements the pipeline scheduler: stage/step
// sequencing, the breakpoint protocol, variable resolution, artifact
// collection, and the run status machine (spec §4.8, §5). Grounded on
// internal/engine/runner.go's ExecuteWorkflow/executeSteps/executeStep
// shape in the teacher repository, generalized from a single flat step
// list to stages, and from the teacher's text/template expansion to
// plain ${KEY} substitution via internal/varsubst.
package engine

import "github.com/pipeforge/pipeforge/internal/model"

// DebugAction is the decision an OnBeforeStep handler returns.
type DebugAction string

const (
	Continue DebugAction = "continue"
	Skip     DebugAction = "skip"
	Retry    DebugAction = "retry"
	Abort    DebugAction = "abort"
)

// OutputEvent carries one captured output line, fired synchronously as
// it is produced (spec §4.8 OnOutput).
type OutputEvent struct {
	Run       *model.PipelineRun
	StageName string
	StepName  string
	Line      model.OutputLine
}

// BeforeStepEvent is fired before a step executes, and again as a
// failure gate when the step's breakpoint is on_failure. Handlers set
// Action; the zero value (empty string) is treated as Continue.
type BeforeStepEvent struct {
	Run           *model.PipelineRun
	StageName     string
	StepName      string
	StepIndex     int // 1-based
	TotalSteps    int
	IsFailureGate bool
	Action        DebugAction
}

// AfterStepEvent is fired once a step reaches a terminal status,
// regardless of outcome (spec §4.8 OnAfterStep).
type AfterStepEvent struct {
	Run        *model.PipelineRun
	StageName  string
	StepName   string
	StepIndex  int
	TotalSteps int
	Result     *model.StepResult
}

// Observer receives the engine's three synchronous events. Handlers
// must not retain or mutate Run beyond the call; see spec §5 "Shared
// resources".
type Observer interface {
	OnOutput(event OutputEvent)
	OnBeforeStep(event *BeforeStepEvent)
	OnAfterStep(event AfterStepEvent)
}

// NopObserver implements Observer with no-ops, letting callers embed it
// and override only the events they care about.
type NopObserver struct{}

func (NopObserver) OnOutput(OutputEvent)          {}
func (NopObserver) OnBeforeStep(*BeforeStepEvent) {}
func (NopObserver) OnAfterStep(AfterStepEvent)    {}

// RunObserver receives a read-only snapshot of the run on every state
// transition, independent of the step-scoped Observer above. This is how
// the local HTTP endpoint stays current without the engine importing its
// package (SPEC_FULL §4.8).
type RunObserver interface {
	OnSnapshot(run *model.PipelineRun)
}
