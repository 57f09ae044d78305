package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pipeforge/pipeforge/internal/condition"
	"github.com/pipeforge/pipeforge/internal/hints"
	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/pathutil"
)

// Engine executes a single PipelineDefinition at a time. It is stateless
// between calls to Execute; all per-run state lives on the returned
// PipelineRun (spec §5 "single-threaded cooperative").
type Engine struct {
	logger      *slog.Logger
	hints       *hints.Catalog
	conditions  *condition.Evaluator
	runObserver RunObserver
}

// New constructs an Engine. hintCatalog and runObserver may be nil;
// logger defaults to slog.Default() when nil.
func New(logger *slog.Logger, hintCatalog *hints.Catalog, conditions *condition.Evaluator, runObserver RunObserver) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if hintCatalog == nil {
		hintCatalog = hints.Default()
	}
	return &Engine{logger: logger, hints: hintCatalog, conditions: conditions, runObserver: runObserver}
}

// the observer in scope for the current Execute call; executeStep and
// its helpers read it through this field rather than as a parameter,
// matching the teacher's Runner-holds-its-collaborators shape.
type engineCall struct {
	*Engine
	observer    Observer
	interactive bool

	// retriedFailures counts failed results superseded by a failure-gate
	// Retry; they do not decide the run's final status.
	retriedFailures int
}

// RunOptions configures one Execute call, mirroring the teacher's
// RunnerOptions shape in internal/engine/runner.go.
type RunOptions struct {
	Interactive   bool
	Observer      Observer
	Trigger       model.TriggerKind
	TriggerReason string
}

// Execute runs def to completion (or to the first unhandled cancellation
// or abort) and returns the fully populated run (spec §4.8 "Contract").
func (e *Engine) Execute(ctx context.Context, def *model.PipelineDefinition, opts RunOptions) (*model.PipelineRun, error) {
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	call := &engineCall{Engine: e, observer: observer, interactive: opts.Interactive}
	return call.run(ctx, def, opts)
}

func (c *engineCall) run(ctx context.Context, def *model.PipelineDefinition, opts RunOptions) (*model.PipelineRun, error) {
	run := model.NewRun(uuid.NewString(), def.Name)
	run.StartTime = time.Now()
	run.Status = model.RunRunning
	if opts.Trigger != "" {
		run.Trigger = opts.Trigger
	}
	run.TriggerReason = opts.TriggerReason

	for k, v := range def.Variables {
		run.Variables[k] = v
	}

	workDir, err := pathutil.Normalize(def.WorkingDir, "")
	if err != nil {
		return c.fail(run, err)
	}
	run.Variables[model.VarWorkDir] = workDir
	run.Variables[model.VarRunID] = run.ID
	run.Variables[model.VarPipeline] = def.Name

	c.snapshot(run)

	totalSteps := totalStepCount(def)
	stepIndex := 0

	for _, stage := range def.Stages {
		ok, err := evalStageCondition(stage.Condition, run.Variables, c.conditions)
		if err != nil {
			return c.fail(run, err)
		}
		if !ok {
			c.logger.Info("skipping stage, condition not met", "stage", stage.Name)
			stepIndex += len(stage.Steps)
			continue
		}

		outcome := c.runStage(ctx, run, stage, &stepIndex, totalSteps)
		switch outcome {
		case stageOutcomeContinue:
			continue
		case stageOutcomeCancelled:
			return c.finish(run, model.RunCancelled), nil
		case stageOutcomeFailed:
			return c.finish(run, model.RunFailed), nil
		}
	}

	if run.FailedCount() > c.retriedFailures {
		return c.finish(run, model.RunFailed), nil
	}
	return c.finish(run, model.RunSuccess), nil
}

type stageOutcome int

const (
	stageOutcomeContinue stageOutcome = iota
	stageOutcomeCancelled
	stageOutcomeFailed
)

func (c *engineCall) runStage(ctx context.Context, run *model.PipelineRun, stage model.PipelineStage, stepIndex *int, totalSteps int) stageOutcome {
	previousExitCode := -1

	for _, step := range stage.Steps {
		*stepIndex++

		if ctx.Err() != nil {
			return stageOutcomeCancelled
		}

		ok, err := evalStepCondition(step.Condition, run.Variables, c.conditions, previousExitCode)
		if err != nil {
			c.logger.Warn("step condition evaluation failed, treating as not met", "step", step.Name, "error", err)
			ok = false
		}
		if !ok {
			continue
		}

		action := c.beforeStep(run, stage.Name, step, *stepIndex, totalSteps, false)
		switch action {
		case Skip:
			run.StepResults = append(run.StepResults, skippedResult(step, stage.Name))
			c.snapshot(run)
			continue
		case Abort:
			return stageOutcomeCancelled
		}
		// Retry and Continue are equivalent before first execution (Open
		// Question (b)).

		result := c.executeStep(ctx, run, stage.Name, step)
		previousExitCode = result.ExitCode
		c.afterStep(run, stage.Name, step.Name, *stepIndex, totalSteps, result)

		if result.Status != model.StepFailed || step.AllowFailure {
			continue
		}

		if step.Breakpoint == model.BreakpointOnFailure {
			action := c.beforeStep(run, stage.Name, step, *stepIndex, totalSteps, true)
			switch action {
			case Retry:
				c.retriedFailures++
				result = c.executeStep(ctx, run, stage.Name, step)
				previousExitCode = result.ExitCode
				c.afterStep(run, stage.Name, step.Name, *stepIndex, totalSteps, result)
				if result.Status == model.StepFailed && !step.AllowFailure && !stage.ContinueOnError {
					return stageOutcomeFailed
				}
				continue
			case Skip:
				continue
			case Abort:
				return stageOutcomeCancelled
			}
		}

		if !stage.ContinueOnError {
			return stageOutcomeFailed
		}
	}
	return stageOutcomeContinue
}

func (c *engineCall) beforeStep(run *model.PipelineRun, stageName string, step model.PipelineStep, index, total int, isFailureGate bool) DebugAction {
	// Open Question (a): a single breakpoint fires for "interactive OR
	// always", not once per condition.
	if !isFailureGate && !(c.interactive || step.Breakpoint == model.BreakpointAlways) {
		return Continue
	}

	run.Status = model.RunPaused
	event := &BeforeStepEvent{
		Run: run, StageName: stageName, StepName: step.Name,
		StepIndex: index, TotalSteps: total, IsFailureGate: isFailureGate,
	}
	c.observer.OnBeforeStep(event)
	run.Status = model.RunRunning

	if event.Action == "" {
		return Continue
	}
	return event.Action
}

func (c *engineCall) afterStep(run *model.PipelineRun, stageName, stepName string, index, total int, result *model.StepResult) {
	c.observer.OnAfterStep(AfterStepEvent{
		Run: run, StageName: stageName, StepName: stepName,
		StepIndex: index, TotalSteps: total, Result: result,
	})
	c.snapshot(run)
}

func skippedResult(step model.PipelineStep, stageName string) *model.StepResult {
	now := time.Now()
	return &model.StepResult{
		StepName:        step.Name,
		StageName:       stageName,
		ResolvedCommand: step.Command,
		Status:          model.StepSkipped,
		ExitCode:        -1,
		StartTime:       now,
		CompletionTime:  &now,
	}
}

func (c *engineCall) fail(run *model.PipelineRun, err error) (*model.PipelineRun, error) {
	run.Status = model.RunFailed
	now := time.Now()
	run.CompletionTime = &now
	c.logger.Error("engine execution failed", "run_id", run.ID, "error", err)
	c.snapshot(run)
	return run, nil
}

func (c *engineCall) finish(run *model.PipelineRun, status model.RunStatus) *model.PipelineRun {
	run.Status = status
	now := time.Now()
	run.CompletionTime = &now
	c.snapshot(run)
	return run
}

func (c *engineCall) snapshot(run *model.PipelineRun) {
	if c.runObserver != nil {
		c.runObserver.OnSnapshot(run)
	}
}

func totalStepCount(def *model.PipelineDefinition) int {
	n := 0
	for _, stage := range def.Stages {
		n += len(stage.Steps)
	}
	return n
}
