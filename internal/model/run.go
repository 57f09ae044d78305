package model

import "time"

// RunStatus is the status of a PipelineRun.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunPaused    RunStatus = "paused"
	RunSuccess   RunStatus = "success"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether s is a terminal run status.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunSuccess, RunFailed, RunCancelled:
		return true
	default:
		return false
	}
}

// TriggerKind distinguishes how a run was started.
type TriggerKind string

const (
	TriggerManual TriggerKind = "manual"
	TriggerWatch  TriggerKind = "watch"
)

// PipelineRun is created per execution and owned exclusively by the engine
// for the duration of a run; callers receive it back once execution
// returns (or via read-only observer snapshots while it is in flight).
type PipelineRun struct {
	ID            string
	PipelineName  string
	StartTime     time.Time
	CompletionTime *time.Time
	Status        RunStatus
	Trigger       TriggerKind
	TriggerReason string
	Variables     map[string]string
	StepResults   []*StepResult
	Artifacts     []ArtifactInfo
}

// NewRun constructs a fresh, Pending run for the given pipeline name.
func NewRun(id, pipelineName string) *PipelineRun {
	return &PipelineRun{
		ID:           id,
		PipelineName: pipelineName,
		Status:       RunPending,
		Trigger:      TriggerManual,
		Variables:    make(map[string]string),
		StepResults:  nil,
		Artifacts:    nil,
	}
}

// Elapsed returns the time between StartTime and CompletionTime, or between
// StartTime and now if the run has not completed.
func (r *PipelineRun) Elapsed() time.Duration {
	if r.CompletionTime != nil {
		return r.CompletionTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// LastRunningStep returns the most recently appended step result still in
// the Running status, or nil if none.
func (r *PipelineRun) LastRunningStep() *StepResult {
	for i := len(r.StepResults) - 1; i >= 0; i-- {
		if r.StepResults[i].Status == StepRunning {
			return r.StepResults[i]
		}
	}
	return nil
}

// LastCompletedStep returns the most recently appended step result in a
// terminal status (Success, Failed, Skipped), or nil if none.
func (r *PipelineRun) LastCompletedStep() *StepResult {
	for i := len(r.StepResults) - 1; i >= 0; i-- {
		switch r.StepResults[i].Status {
		case StepSuccess, StepFailed, StepSkipped:
			return r.StepResults[i]
		}
	}
	return nil
}

// SuccessCount returns the number of step results with status Success.
func (r *PipelineRun) SuccessCount() int {
	return r.countStatus(StepSuccess)
}

// FailedCount returns the number of step results with status Failed.
func (r *PipelineRun) FailedCount() int {
	return r.countStatus(StepFailed)
}

// SkippedCount returns the number of step results with status Skipped.
func (r *PipelineRun) SkippedCount() int {
	return r.countStatus(StepSkipped)
}

// HasFailures reports whether any step result has status Failed.
func (r *PipelineRun) HasFailures() bool {
	return r.FailedCount() > 0
}

func (r *PipelineRun) countStatus(status StepStatus) int {
	n := 0
	for _, sr := range r.StepResults {
		if sr.Status == status {
			n++
		}
	}
	return n
}

// StepStatus is the status of a single StepResult.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepSkipped StepStatus = "skipped"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
)

// DefaultTailLines is the number of trailing stderr lines surfaced as the
// "last N" derived view (spec §3).
const DefaultTailLines = 10

// StepResult records the execution of one PipelineStep within a run.
type StepResult struct {
	StepName       string
	StageName      string
	ResolvedCommand string
	Status         StepStatus
	ExitCode       int
	StartTime      time.Time
	CompletionTime *time.Time
	Stdout         []OutputLine
	Stderr         []OutputLine
	Environment    map[string]string
	Artifacts      []string
	ErrorMessage   string
	Hints          []string
}

// NewStepResult constructs a Pending-less, Running step result ready to be
// appended to a run. ExitCode starts at -1 per spec §3 until the process
// completes.
func NewStepResult(stepName, stageName, resolvedCommand string, env map[string]string) *StepResult {
	return &StepResult{
		StepName:        stepName,
		StageName:       stageName,
		ResolvedCommand: resolvedCommand,
		Status:          StepRunning,
		ExitCode:        -1,
		StartTime:       time.Now(),
		Environment:     env,
	}
}

// CombinedOutput returns stdout and stderr lines merged in chronological
// order.
func (s *StepResult) CombinedOutput() []OutputLine {
	combined := make([]OutputLine, 0, len(s.Stdout)+len(s.Stderr))
	combined = append(combined, s.Stdout...)
	combined = append(combined, s.Stderr...)
	sortByTimestamp(combined)
	return combined
}

// LastStderrLines returns the last n stderr lines (default
// DefaultTailLines when n <= 0).
func (s *StepResult) LastStderrLines(n int) []OutputLine {
	if n <= 0 {
		n = DefaultTailLines
	}
	if len(s.Stderr) <= n {
		return s.Stderr
	}
	return s.Stderr[len(s.Stderr)-n:]
}

// ErrorSummary returns a non-empty summary only when the step failed.
func (s *StepResult) ErrorSummary() string {
	if s.Status != StepFailed {
		return ""
	}
	if s.ErrorMessage != "" {
		return s.ErrorMessage
	}
	return "step failed"
}

func sortByTimestamp(lines []OutputLine) {
	// Stdout and stderr are each already chronological; a simple stable
	// insertion sort merges two short, mostly-sorted sequences cheaply
	// without pulling in sort.Slice's reflection overhead for every line.
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j-1].Timestamp.After(lines[j].Timestamp); j-- {
			lines[j-1], lines[j] = lines[j], lines[j-1]
		}
	}
}

// OutputSource distinguishes stdout from stderr lines.
type OutputSource string

const (
	SourceStdOut OutputSource = "stdout"
	SourceStdErr OutputSource = "stderr"
)

// OutputLine is one captured line of process output.
type OutputLine struct {
	Timestamp time.Time
	Text      string
	Source    OutputSource
}

// ArtifactInfo describes one file produced by a step and captured by its
// artifact glob patterns.
type ArtifactInfo struct {
	Path       string
	StepName   string
	SizeBytes  int64
	CreatedAt  time.Time
}
