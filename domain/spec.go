package domain

import (
	"errors"
	"fmt"
)

// Scenario type and step names. Only the schedule-then-poll workflow is
// defined; anything else is a configuration error, never a silent fallback.
const (
	ScenarioJobWithPolling = "job_with_polling"

	StepScheduleJob = "schedule_job"
	StepPollJob     = "poll_job"
)

// Completion actions.
const (
	ActionSuccess = "success"
	ActionError   = "error"
)

// Scenario is a named multi-step workflow definition.
type Scenario struct {
	Type  string `yaml:"type"`
	Steps []Step `yaml:"steps"`
}

// Step is one request of a scenario, with templates re-substituted from the
// current bindings every time the step executes.
type Step struct {
	Name     string            `yaml:"name"`
	Method   string            `yaml:"method"`
	Endpoint string            `yaml:"endpoint"`
	Body     *string           `yaml:"body,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	// Extract maps variable name -> JSONPath expression evaluated against
	// the step's JSON response.
	Extract map[string]string `yaml:"extract_response,omitempty"`
	Polling *PollingPolicy    `yaml:"polling,omitempty"`
}

// PollingPolicy controls the poll loop of a poll_job step. Conditions are
// evaluated in declared order; the first match wins.
type PollingPolicy struct {
	IntervalSeconds      uint                  `yaml:"interval_seconds"`
	TimeoutSeconds       uint                  `yaml:"timeout_seconds"`
	CompletionConditions []CompletionCondition `yaml:"completion_conditions"`
}

// CompletionCondition maps a response status value to a terminal action.
type CompletionCondition struct {
	Status       string  `yaml:"status"`
	Action       string  `yaml:"action"`
	ErrorField   *string `yaml:"error_field,omitempty"`
	ErrorMessage *string `yaml:"error_message,omitempty"`
}

// Validate checks the scenario shape before any network activity happens.
func (s Scenario) Validate() error {
	if s.Type != ScenarioJobWithPolling {
		return &OpError{
			Op:   "scenario.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("unsupported scenario type: %q", s.Type),
		}
	}
	if len(s.Steps) != 2 {
		return &OpError{
			Op:   "scenario.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%s scenario must have exactly 2 steps (%s, %s), got %d", ScenarioJobWithPolling, StepScheduleJob, StepPollJob, len(s.Steps)),
		}
	}
	if s.Steps[0].Name != StepScheduleJob {
		return &OpError{
			Op:   "scenario.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("first step must be named %q, got %q", StepScheduleJob, s.Steps[0].Name),
		}
	}
	if s.Steps[1].Name != StepPollJob {
		return &OpError{
			Op:   "scenario.validate",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("second step must be named %q, got %q", StepPollJob, s.Steps[1].Name),
		}
	}
	if s.Steps[1].Polling == nil {
		return &OpError{
			Op:   "scenario.validate",
			Kind: KindInvalidConfig,
			Err:  errors.New("poll_job step must have a polling policy"),
		}
	}
	return nil
}

// ScenarioSpec pairs a scenario definition with the base URL and bindings it
// will run against.
type ScenarioSpec struct {
	BaseURL  string
	Scenario Scenario
	Vars     Vars
}

// HandlerSpec diverts execution to a named handler supplied by the embedding
// application. The core only guarantees the handler exists before invocation.
type HandlerSpec struct {
	Name    string
	BaseURL string
	Vars    Vars
}

// SpecKind tags the active variant of an ExecutionSpec.
type SpecKind int

const (
	SpecSimple SpecKind = iota
	SpecScenario
	SpecCustomHandler
)

// ExecutionSpec is a closed union of the three execution shapes. Exactly one
// variant is populated; the tag fully determines dispatch. Construct it with
// NewSimpleSpec, NewScenarioSpec or NewHandlerSpec.
type ExecutionSpec struct {
	kind     SpecKind
	simple   *RequestDescriptor
	scenario *ScenarioSpec
	handler  *HandlerSpec
}

func NewSimpleSpec(d RequestDescriptor) ExecutionSpec {
	return ExecutionSpec{kind: SpecSimple, simple: &d}
}

func NewScenarioSpec(s ScenarioSpec) ExecutionSpec {
	return ExecutionSpec{kind: SpecScenario, scenario: &s}
}

func NewHandlerSpec(h HandlerSpec) ExecutionSpec {
	return ExecutionSpec{kind: SpecCustomHandler, handler: &h}
}

func (s ExecutionSpec) Kind() SpecKind { return s.kind }

// Simple returns the request descriptor; nil unless Kind() == SpecSimple.
func (s ExecutionSpec) Simple() *RequestDescriptor { return s.simple }

// Scenario returns the scenario spec; nil unless Kind() == SpecScenario.
func (s ExecutionSpec) Scenario() *ScenarioSpec { return s.scenario }

// Handler returns the handler spec; nil unless Kind() == SpecCustomHandler.
func (s ExecutionSpec) Handler() *HandlerSpec { return s.handler }

// CommandSpec is the fully resolved command definition the assembler
// consumes. Argument resolution and inheritance happen upstream; the YAML
// tags mirror the mapping document so embedding applications can decode
// straight into this type.
type CommandSpec struct {
	Name          string            `yaml:"name,omitempty"`
	About         string            `yaml:"about,omitempty"`
	Method        string            `yaml:"method,omitempty"`
	Endpoint      string            `yaml:"endpoint,omitempty"`
	Body          *string           `yaml:"body,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	TableView     []string          `yaml:"table_view,omitempty"`
	Scenario      *Scenario         `yaml:"scenario,omitempty"`
	Multipart     bool              `yaml:"multipart,omitempty"`
	CustomHandler string            `yaml:"custom_handler,omitempty"`

	// Args in declaration order. Per-argument overrides are applied in this
	// order, which makes override application deterministic.
	Args []ArgSpec `yaml:"args,omitempty"`
}

// ArgSpec describes one command argument: the variable it binds, optional
// file semantics, and optional per-argument overrides of the command-level
// request values.
type ArgSpec struct {
	Name     string  `yaml:"name,omitempty"`
	Help     string  `yaml:"help,omitempty"`
	Required bool    `yaml:"required,omitempty"`
	Default  *string `yaml:"default,omitempty"`
	Type     string  `yaml:"type,omitempty"`

	// FileUpload marks the bound value as a path contributed to multipart
	// file fields when the command is marked multipart.
	FileUpload bool `yaml:"file_upload,omitempty"`
	// FileOverridesValueOf names the variable that receives the file's
	// contents when Type == "file" and the bound path is non-empty.
	FileOverridesValueOf string `yaml:"file-overrides-value-of,omitempty"`

	// Per-argument overrides, applied only when the argument was supplied.
	Endpoint *string           `yaml:"endpoint,omitempty"`
	Method   *string           `yaml:"method,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Body     *string           `yaml:"body,omitempty"`
}
