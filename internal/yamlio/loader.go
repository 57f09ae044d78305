// Package yamlio implements the bidirectional mapping between the textual
// YAML pipeline form and internal/model's PipelineDefinition (spec §4.1).
// Wire key names use lower_underscore style; unknown keys are ignored by
// gopkg.in/yaml.v3's default decoding behavior.
package yamlio

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pipeforge/pipeforge/internal/model"
	"github.com/pipeforge/pipeforge/internal/templates"
)

// ParseError wraps a YAML syntax error encountered while loading a pipeline.
type ParseError struct {
	Source string // file path, or "<string>" for in-memory input
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// wireDefinition mirrors PipelineDefinition on the wire.
type wireDefinition struct {
	Version     int               `yaml:"version,omitempty"`
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	WorkingDir  string            `yaml:"working_directory,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty"`
	Watch       []wireWatch       `yaml:"watch,omitempty"`
	Stages      []wireStage       `yaml:"stages,omitempty"`
}

type wireWatch struct {
	Path                  string `yaml:"path,omitempty"`
	Filter                string `yaml:"filter,omitempty"`
	IncludeSubdirectories bool   `yaml:"include_subdirectories,omitempty"`
	DebounceMS            int    `yaml:"debounce_ms,omitempty"`
	Stage                 string `yaml:"stage,omitempty"`
}

type wireStage struct {
	Name            string          `yaml:"name,omitempty"`
	Steps           []wireStep      `yaml:"steps,omitempty"`
	Condition       *wireStageCond  `yaml:"condition,omitempty"`
	ContinueOnError bool            `yaml:"continue_on_error,omitempty"`
}

type wireStageCond struct {
	OnlyIf     string   `yaml:"only_if,omitempty"`
	NotIf      string   `yaml:"not_if,omitempty"`
	FilesExist []string `yaml:"files_exist,omitempty"`
	When       string   `yaml:"when,omitempty"`
}

type wireStep struct {
	Name           string            `yaml:"name,omitempty"`
	Description    string            `yaml:"description,omitempty"`
	Command        string            `yaml:"command,omitempty"`
	Arguments      string            `yaml:"arguments,omitempty"`
	WorkingDir     string            `yaml:"working_directory,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"`
	TimeoutSeconds int               `yaml:"timeout_seconds,omitempty"`
	AllowFailure   bool              `yaml:"allow_failure,omitempty"`
	Artifacts      []string          `yaml:"artifacts,omitempty"`
	Condition      *wireStepCond     `yaml:"condition,omitempty"`
	Breakpoint     string            `yaml:"breakpoint,omitempty"`
}

type wireStepCond struct {
	OnlyIf           string `yaml:"only_if,omitempty"`
	NotIf            string `yaml:"not_if,omitempty"`
	RequiredExitCode *int   `yaml:"exit_code,omitempty"`
	When             string `yaml:"when,omitempty"`
}

// Load parses YAML text into a PipelineDefinition, applying spec §3
// defaults for every omitted field.
func Load(text []byte) (*model.PipelineDefinition, error) {
	var w wireDefinition
	if err := yaml.Unmarshal(text, &w); err != nil {
		return nil, &ParseError{Source: "<string>", Err: err}
	}
	return fromWire(&w), nil
}

// LoadFile reads path and loads it as a pipeline definition. Missing
// files are reported distinctly from YAML syntax errors (spec §4.2).
func LoadFile(path string) (*model.PipelineDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pipeline file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	def, err := Load(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
			return nil, pe
		}
		return nil, err
	}
	return def, nil
}

// LoadTemplate parses one of the built-in starter templates (SPEC_FULL
// §4.1), sharing the exact same parse path user pipelines go through so
// template/schema drift surfaces as an ordinary validator or loader
// failure.
func LoadTemplate(name string) (*model.PipelineDefinition, error) {
	data, err := templates.Get(name)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Save serializes a PipelineDefinition to YAML text, omitting every field
// that equals its spec §3 default so round-tripping a programmatically
// built pipeline stays concise.
func Save(def *model.PipelineDefinition) ([]byte, error) {
	w := toWire(def)
	return yaml.Marshal(w)
}

// SaveFile writes def to path as YAML.
func SaveFile(def *model.PipelineDefinition, path string) error {
	data, err := Save(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fromWire(w *wireDefinition) *model.PipelineDefinition {
	def := model.NewPipelineDefinition()

	if w.Name != "" {
		def.Name = w.Name
	}
	def.Description = w.Description
	def.SchemaVersion = w.Version
	def.WorkingDir = w.WorkingDir
	if w.Variables != nil {
		def.Variables = w.Variables
	}

	for _, wt := range w.Watch {
		def.WatchTriggers = append(def.WatchTriggers, watchFromWire(wt))
	}
	for _, ws := range w.Stages {
		def.Stages = append(def.Stages, stageFromWire(ws))
	}

	return def
}

func watchFromWire(w wireWatch) model.WatchTrigger {
	t := model.DefaultWatchTrigger()
	if w.Path != "" {
		t.Path = w.Path
	}
	if w.Filter != "" {
		t.Filter = w.Filter
	}
	t.IncludeSubdirectories = w.IncludeSubdirectories
	if w.DebounceMS != 0 {
		t.DebounceMS = w.DebounceMS
	}
	t.Stage = w.Stage
	return t
}

func stageFromWire(w wireStage) model.PipelineStage {
	stage := model.PipelineStage{
		Name:            w.Name,
		ContinueOnError: w.ContinueOnError,
	}
	if stage.Name == "" {
		stage.Name = model.DefaultStageName
	}
	for _, s := range w.Steps {
		stage.Steps = append(stage.Steps, stepFromWire(s))
	}
	if w.Condition != nil {
		stage.Condition = &model.StageCondition{
			OnlyIf:     w.Condition.OnlyIf,
			NotIf:      w.Condition.NotIf,
			FilesExist: w.Condition.FilesExist,
			Expression: w.Condition.When,
		}
	}
	return stage
}

func stepFromWire(w wireStep) model.PipelineStep {
	step := model.NewPipelineStep(w.Name, w.Command)
	step.Description = w.Description
	step.Arguments = w.Arguments
	step.WorkingDir = w.WorkingDir
	if w.Env != nil {
		step.Env = w.Env
	}
	if w.TimeoutSeconds > 0 {
		step.TimeoutSeconds = w.TimeoutSeconds
	}
	step.AllowFailure = w.AllowFailure
	step.Artifacts = w.Artifacts
	step.Breakpoint = breakpointFromWire(w.Breakpoint)
	if w.Condition != nil {
		step.Condition = &model.StepCondition{
			OnlyIf:           w.Condition.OnlyIf,
			NotIf:            w.Condition.NotIf,
			RequiredExitCode: w.Condition.RequiredExitCode,
			Expression:       w.Condition.When,
		}
	}
	return step
}

func breakpointFromWire(s string) model.BreakpointMode {
	switch lowerASCII(s) {
	case "always":
		return model.BreakpointAlways
	case "on_failure":
		return model.BreakpointOnFailure
	default:
		return model.BreakpointNever
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toWire(def *model.PipelineDefinition) *wireDefinition {
	w := &wireDefinition{
		Description: def.Description,
		WorkingDir:  def.WorkingDir,
		Variables:   def.Variables,
	}
	if def.Name != "" && def.Name != model.DefaultPipelineName {
		w.Name = def.Name
	}
	if def.SchemaVersion != 0 {
		w.Version = def.SchemaVersion
	}

	for _, t := range def.WatchTriggers {
		w.Watch = append(w.Watch, watchToWire(t))
	}
	for _, s := range def.Stages {
		w.Stages = append(w.Stages, stageToWire(s))
	}

	return w
}

func watchToWire(t model.WatchTrigger) wireWatch {
	def := model.DefaultWatchTrigger()
	w := wireWatch{Stage: t.Stage, IncludeSubdirectories: t.IncludeSubdirectories}
	if t.Path != def.Path {
		w.Path = t.Path
	}
	if t.Filter != def.Filter {
		w.Filter = t.Filter
	}
	if t.DebounceMS != def.DebounceMS {
		w.DebounceMS = t.DebounceMS
	}
	return w
}

func stageToWire(s model.PipelineStage) wireStage {
	w := wireStage{ContinueOnError: s.ContinueOnError}
	if s.Name != model.DefaultStageName {
		w.Name = s.Name
	}
	for _, step := range s.Steps {
		w.Steps = append(w.Steps, stepToWire(step))
	}
	if s.Condition != nil {
		w.Condition = &wireStageCond{
			OnlyIf:     s.Condition.OnlyIf,
			NotIf:      s.Condition.NotIf,
			FilesExist: s.Condition.FilesExist,
			When:       s.Condition.Expression,
		}
	}
	return w
}

func stepToWire(s model.PipelineStep) wireStep {
	w := wireStep{
		Name:         s.Name,
		Description:  s.Description,
		Command:      s.Command,
		Arguments:    s.Arguments,
		WorkingDir:   s.WorkingDir,
		Env:          s.Env,
		AllowFailure: s.AllowFailure,
		Artifacts:    s.Artifacts,
	}
	if s.TimeoutSeconds != model.DefaultTimeoutSeconds {
		w.TimeoutSeconds = s.TimeoutSeconds
	}
	if s.Breakpoint != model.BreakpointNever {
		w.Breakpoint = string(s.Breakpoint)
	}
	if s.Condition != nil {
		w.Condition = &wireStepCond{
			OnlyIf:           s.Condition.OnlyIf,
			NotIf:            s.Condition.NotIf,
			RequiredExitCode: s.Condition.RequiredExitCode,
			When:             s.Condition.Expression,
		}
	}
	return w
}
