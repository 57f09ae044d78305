// Package model defines the pipeline data model: definitions, runs, and
// their constituent parts. The package is intentionally free of YAML tags
// and execution logic — see internal/yamlio for the wire mapping and
// internal/engine for the state machine that operates on these types.
package model


// DefaultPipelineName is the sentinel used when no name is declared.
const DefaultPipelineName = "Unnamed Pipeline"

// CurrentSchemaVersion is the schema version this module understands.
const CurrentSchemaVersion = 1

// BreakpointMode controls when OnBeforeStep fires for a given step.
type BreakpointMode string

const (
	BreakpointNever     BreakpointMode = "never"
	BreakpointAlways    BreakpointMode = "always"
	BreakpointOnFailure BreakpointMode = "on_failure"
)

// PipelineDefinition is the top-level, immutable-during-a-run entity
// produced by the loader (or built programmatically).
type PipelineDefinition struct {
	Name            string
	Description     string
	SchemaVersion   int
	WorkingDir      string
	Variables       map[string]string
	WatchTriggers   []WatchTrigger
	Stages          []PipelineStage
}

// NewPipelineDefinition returns a definition with spec-mandated defaults applied.
func NewPipelineDefinition() *PipelineDefinition {
	return &PipelineDefinition{
		Name:      DefaultPipelineName,
		Variables: make(map[string]string),
	}
}

// WatchTrigger declares a filesystem location whose debounced changes
// cause the pipeline to be re-executed in watch mode.
type WatchTrigger struct {
	Path                 string
	Filter               string
	IncludeSubdirectories bool
	DebounceMS           int
	Stage                string // optional stage name, kept from the wire form; nothing consults it, so a trigger always re-runs every stage
}

// DefaultWatchTrigger returns a trigger with spec-mandated defaults.
func DefaultWatchTrigger() WatchTrigger {
	return WatchTrigger{
		Path:       ".",
		Filter:     "*.*",
		DebounceMS: 500,
	}
}

// PipelineStage is an ordered, named sequence of steps.
type PipelineStage struct {
	Name             string
	Steps            []PipelineStep
	Condition        *StageCondition
	ContinueOnError  bool
}

// DefaultStageName is used when a stage's name is omitted.
const DefaultStageName = "default"

// StageCondition gates whether a stage executes.
type StageCondition struct {
	OnlyIf       string   // variable name that must be truthy
	NotIf        string   // variable name that must not be truthy
	FilesExist   []string // all must exist
	Expression   string   // optional CEL boolean expression (SPEC_FULL §3), ANDed with the above
}

// StepCondition gates whether a step executes.
type StepCondition struct {
	OnlyIf           string
	NotIf            string
	RequiredExitCode *int // required prior exit code, if set
	Expression       string
}

// PipelineStep is a single unit of work within a stage.
type PipelineStep struct {
	Name            string
	Description     string
	Command         string
	Arguments       string
	WorkingDir      string
	Env             map[string]string
	TimeoutSeconds  int
	AllowFailure    bool
	Artifacts       []string
	Condition       *StepCondition
	Breakpoint      BreakpointMode
}

// DefaultTimeoutSeconds is the step timeout applied when unset.
const DefaultTimeoutSeconds = 300

// NewPipelineStep returns a step with spec-mandated defaults applied.
func NewPipelineStep(name, command string) PipelineStep {
	return PipelineStep{
		Name:           name,
		Command:        command,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Breakpoint:     BreakpointNever,
	}
}

// builtin variable names the engine injects at run start; referenced by
// the validator when checking for undeclared variables.
const (
	VarWorkDir  = "PIPEFORGE_WORK_DIR"
	VarRunID    = "PIPEFORGE_RUN_ID"
	VarPipeline = "PIPEFORGE_PIPELINE"
)

// BuiltinVariables lists the runtime-injected variable names.
func BuiltinVariables() []string {
	return []string{VarWorkDir, VarRunID, VarPipeline}
}

// IsBuiltinVariable reports whether name is one of the runtime built-ins.
func IsBuiltinVariable(name string) bool {
	for _, v := range BuiltinVariables() {
		if v == name {
			return true
		}
	}
	return false
}
