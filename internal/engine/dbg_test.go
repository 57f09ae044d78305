package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pipeforge/pipeforge/internal/model"
)

func TestDebugRetry(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	def := &model.PipelineDefinition{
		Name: "R",
		Stages: []model.PipelineStage{
			{Name: "s", Steps: []model.PipelineStep{
				{
					Name:           "FlakyThenOK",
					Command:        "sh",
					Arguments:      `-c "test -f ` + marker + ` && exit 0 || (touch ` + marker + ` && exit 1)"`,
					TimeoutSeconds: 10,
					Breakpoint:     model.BreakpointOnFailure,
				},
			}},
		},
	}

	observer := &recordingObserver{
		onBeforeStep: func(e *BeforeStepEvent) {
			fmt.Println("beforeStep gate=", e.IsFailureGate)
			if e.IsFailureGate {
				e.Action = Retry
			}
		},
		onAfterStep: func(e AfterStepEvent) { fmt.Println("afterStep status=", e.Result.Status, "exit=", e.Result.ExitCode, "err=", e.Result.ErrorMessage) },
	}

	run, err := newTestEngine(t).Execute(context.Background(), def, RunOptions{Observer: observer})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	fmt.Println("run status", run.Status)
}
