package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/procrunner"
	"github.com/pipeforge/pipeforge/internal/varsubst"
)

// executeStep runs one step to completion: resolves its command,
// arguments, working directory and environment against run variables,
// streams output through OnOutput, and collects artifacts regardless of
// outcome (spec §4.8 "Step execution").
func (c *engineCall) executeStep(ctx context.Context, run *model.PipelineRun, stageName string, step model.PipelineStep) *model.StepResult {
	vars := run.Variables

	command := varsubst.Resolve(step.Command, vars)
	arguments := varsubst.Resolve(step.Arguments, vars)
	workingDir := varsubst.Resolve(step.WorkingDir, vars)
	if workingDir == "" {
		workingDir = vars[model.VarWorkDir]
	}

	env := make(map[string]string, len(step.Env))
	for k, v := range step.Env {
		env[k] = varsubst.Resolve(v, vars)
	}

	resolvedCommand := command
	if arguments != "" {
		resolvedCommand = command + " " + arguments
	}

	result := model.NewStepResult(step.Name, stageName, resolvedCommand, env)
	run.StepResults = append(run.StepResults, result)
	c.snapshot(run)

	timeout := time.Duration(step.TimeoutSeconds) * time.Second
	runResult, err := procrunner.Run(ctx, procrunner.Options{
		Command:    command,
		Arguments:  arguments,
		WorkingDir: workingDir,
		Env:        env,
		Timeout:    timeout,
		OnStdout: func(line string) {
			c.appendOutput(run, result, stageName, step.Name, line, model.SourceStdOut)
		},
		OnStderr: func(line string) {
			c.appendOutput(run, result, stageName, step.Name, line, model.SourceStdErr)
		},
	})

	result.ExitCode = runResult.ExitCode
	switch {
	case err == procrunner.ErrTimeout:
		result.Status = model.StepFailed
		result.ErrorMessage = fmt.Sprintf("step timed out after %s", timeout)
	case err == procrunner.ErrCancelled:
		result.Status = model.StepFailed
		result.ErrorMessage = "step cancelled"
	case err != nil:
		result.Status = model.StepFailed
		result.ErrorMessage = err.Error()
	case runResult.ExitCode != 0:
		result.Status = model.StepFailed
		result.ErrorMessage = "Process exited with code " + formatExitCode(runResult.ExitCode)
	default:
		result.Status = model.StepSuccess
	}

	if result.Status == model.StepFailed {
		result.Hints = c.hints.Match(combinedFailureText(result))
	}

	c.collectArtifacts(run, result, step, vars)

	now := time.Now()
	result.CompletionTime = &now
	c.snapshot(run)
	return result
}

func combinedFailureText(result *model.StepResult) string {
	text := result.ErrorMessage
	for _, line := range result.Stderr {
		text += "\n" + line.Text
	}
	return text
}

func (c *engineCall) appendOutput(run *model.PipelineRun, result *model.StepResult, stageName, stepName, text string, source model.OutputSource) {
	line := model.OutputLine{Timestamp: time.Now(), Text: text, Source: source}
	if source == model.SourceStdOut {
		result.Stdout = append(result.Stdout, line)
	} else {
		result.Stderr = append(result.Stderr, line)
	}
	c.observer.OnOutput(OutputEvent{Run: run, StageName: stageName, StepName: stepName, Line: line})
}

// collectArtifacts resolves each of step's artifact glob patterns against
// run variables and records every matching file, regardless of the
// step's outcome (spec §4.8).
func (c *engineCall) collectArtifacts(run *model.PipelineRun, result *model.StepResult, step model.PipelineStep, vars map[string]string) {
	for _, pattern := range step.Artifacts {
		resolved := varsubst.Resolve(pattern, vars)
		matches, err := filepath.Glob(resolved)
		if err != nil {
			c.logger.Warn("invalid artifact pattern", "step", step.Name, "pattern", resolved, "error", err)
			continue
		}
		for _, match := range matches {
			info, statErr := os.Stat(match)
			var size int64
			var created time.Time
			if statErr == nil {
				size = info.Size()
				created = info.ModTime()
			} else {
				created = time.Now()
			}
			run.Artifacts = append(run.Artifacts, model.ArtifactInfo{
				Path:      match,
				StepName:  step.Name,
				SizeBytes: size,
				CreatedAt: created,
			})
			result.Artifacts = append(result.Artifacts, match)
		}
	}
}
