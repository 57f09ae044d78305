package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pipeforge/pipeforge/internal/engine"
	"github.com/pipeforge/pipeforge/internal/model"
)

// cliObserver prints step output and, whenever the engine fires
// OnBeforeStep (interactive mode, an always breakpoint, or an on_failure
// gate), prompts on stdin for a breakpoint decision. It implements
// engine.Observer.
type cliObserver struct {
	out     io.Writer
	in      *bufio.Reader
	verbose bool
	quiet   bool
}

func newCLIObserver(out io.Writer, in io.Reader, verbose, quiet bool) *cliObserver {
	return &cliObserver{out: out, in: bufio.NewReader(in), verbose: verbose, quiet: quiet}
}

func (o *cliObserver) OnOutput(e engine.OutputEvent) {
	if o.quiet && !o.verbose {
		return
	}
	prefix := fmt.Sprintf("[%s/%s]", e.StageName, e.StepName)
	if e.Line.Source == model.SourceStdErr {
		prefix += " stderr:"
	}
	fmt.Fprintf(o.out, "%s %s\n", prefix, e.Line.Text)
}

func (o *cliObserver) OnBeforeStep(e *engine.BeforeStepEvent) {
	label := "before"
	if e.IsFailureGate {
		label = "failure gate"
	}
	fmt.Fprintf(o.out, "\n-- %s step %d/%d: %s/%s --\n", label, e.StepIndex, e.TotalSteps, e.StageName, e.StepName)
	fmt.Fprint(o.out, "[c]ontinue, [s]kip, [r]etry, [a]bort? ")

	line, _ := o.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "skip":
		e.Action = engine.Skip
	case "r", "retry":
		e.Action = engine.Retry
	case "a", "abort":
		e.Action = engine.Abort
	default:
		e.Action = engine.Continue
	}
}

func (o *cliObserver) OnAfterStep(e engine.AfterStepEvent) {
	if o.quiet && !o.verbose {
		return
	}
	fmt.Fprintf(o.out, "[%s/%s] %s (exit %d)\n", e.StageName, e.StepName, e.Result.Status, e.Result.ExitCode)
	for _, hint := range e.Result.Hints {
		fmt.Fprintf(o.out, "  hint: %s\n", hint)
	}
}
