// Package eval implements the agent-evals evaluation engine: grader algebra,
// scoring, pipeline, runner, gates, judge-only re-grading, and run comparison.
package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// TokenUsage records input/output token counts for one target invocation.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Validate checks that token counts are non-negative.
func (t TokenUsage) Validate() error {
	if t.Input < 0 {
		return fmt.Errorf("tokenUsage.input must be >= 0, got %d", t.Input)
	}
	if t.Output < 0 {
		return fmt.Errorf("tokenUsage.output must be >= 0, got %d", t.Output)
	}
	return nil
}

// ToolCall is one invocation in a TargetOutput's ordered tool-call sequence.
type ToolCall struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	Result any            `json:"result,omitempty"`
}

// Category classifies a Case for byCategory run statistics.
type Category string

const (
	CategoryHappyPath  Category = "happy_path"
	CategoryEdgeCase   Category = "edge_case"
	CategoryAdversarial Category = "adversarial"
	CategoryMultiStep  Category = "multi_step"
	CategoryRegression Category = "regression"
)

func (c Category) valid() bool {
	switch c {
	case "", CategoryHappyPath, CategoryEdgeCase, CategoryAdversarial, CategoryMultiStep, CategoryRegression:
		return true
	default:
		return false
	}
}

// TargetOutput is the strictly-validated result of one target invocation.
type TargetOutput struct {
	Text       *string     `json:"text,omitempty"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	LatencyMs  int64       `json:"latencyMs"`
	TokenUsage *TokenUsage `json:"tokenUsage,omitempty"`
	Cost       *float64    `json:"cost,omitempty"`
	Raw        any         `json:"raw,omitempty"`
}

// Validate enforces the field-level invariants from the data model.
func (o TargetOutput) Validate() error {
	if o.LatencyMs < 0 {
		return fmt.Errorf("targetOutput.latencyMs must be >= 0, got %d", o.LatencyMs)
	}
	if o.Cost != nil && *o.Cost < 0 {
		return fmt.Errorf("targetOutput.cost must be >= 0, got %v", *o.Cost)
	}
	if o.TokenUsage != nil {
		if err := o.TokenUsage.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// targetOutputWire mirrors TargetOutput for strict (unknown-key-rejecting) decoding.
type targetOutputWire TargetOutput

// UnmarshalJSON rejects unknown keys per the data model's "strictly validated" rule.
func (o *TargetOutput) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w targetOutputWire
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("targetOutput: %w", err)
	}
	*o = TargetOutput(w)
	return o.Validate()
}

// CaseExpected is the optional ground-truth reference consumed by graders.
// It is a capability bag: graders read only the fields they need.
type CaseExpected struct {
	Text      *string        `json:"text,omitempty"`
	ToolCalls []ToolCall     `json:"toolCalls,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Case is one input (and optional expected reference) with an id and optional category.
type Case struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Input       map[string]any `json:"input"`
	Expected    *CaseExpected  `json:"expected,omitempty"`
	Category    Category       `json:"category,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// Validate checks the structural invariants of a single case.
func (c Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case: id is required")
	}
	if !c.Category.valid() {
		return fmt.Errorf("case %q: invalid category %q", c.ID, c.Category)
	}
	return nil
}

// ValidateCases rejects duplicate ids within one loaded set, per the data model.
func ValidateCases(cases []Case) error {
	seen := make(map[string]struct{}, len(cases))
	for _, c := range cases {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("duplicate case id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// GradeResult is the output of a single grader invocation.
type GradeResult struct {
	Pass       bool           `json:"pass"`
	Score      float64        `json:"score"`
	Reason     string         `json:"reason"`
	GraderName string         `json:"graderName"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Grader is an asynchronous (context-carrying) pure check over an output.
// Graders MUST NOT mutate output or expected and MUST be safe to call
// concurrently with other unrelated graders, though THE CORE never does so
// within one pipeline run (§5 sequential contract). Name encodes the
// factory parameters so composed graders can report child names.
type Grader interface {
	Name() string
	Grade(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error)
}

// GraderConfig binds a grader with scoring policy.
type GraderConfig struct {
	Grader    Grader
	Weight    float64 // 0 means "unset", defaults to 1 at scoring time
	Required  bool
	Threshold *float64 // nil means "unset"
}

// TrialStatus is the outcome classification of one case execution.
type TrialStatus string

const (
	StatusPass  TrialStatus = "pass"
	StatusFail  TrialStatus = "fail"
	StatusError TrialStatus = "error"
)

// Trial is the record of one case's execution.
type Trial struct {
	CaseID     string        `json:"caseId"`
	Status     TrialStatus   `json:"status"`
	Output     TargetOutput  `json:"output"`
	Grades     []GradeResult `json:"grades"`
	Score      float64       `json:"score"`
	DurationMs int64         `json:"durationMs"`
	TrialIndex *int          `json:"trialIndex,omitempty"`
}

// GateCheck is one evaluated gate condition.
type GateCheck struct {
	Name      string  `json:"name"`
	Pass      bool    `json:"pass"`
	Actual    float64 `json:"actual"`
	Threshold float64 `json:"threshold"`
	Reason    string  `json:"reason"`
}

// GateResult is the conjunction of every configured gate check.
type GateResult struct {
	Pass   bool        `json:"pass"`
	Checks []GateCheck `json:"checks"`
}

// GateConfig declares the optional post-run threshold checks for a suite.
type GateConfig struct {
	PassRate     *float64 `json:"passRate,omitempty"`
	MaxCost      *float64 `json:"maxCost,omitempty"`
	P95LatencyMs *float64 `json:"p95LatencyMs,omitempty"`
}

// CategoryStats is the pass/fail/error breakdown for one category.
type CategoryStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errors   int     `json:"errors"`
	PassRate float64 `json:"passRate"`
}

// RunSummary is derived entirely from a Run's trials plus its gate config.
type RunSummary struct {
	TotalCases      int                      `json:"totalCases"`
	Passed          int                      `json:"passed"`
	Failed          int                      `json:"failed"`
	Errors          int                      `json:"errors"`
	PassRate        float64                  `json:"passRate"`
	TotalCost       float64                  `json:"totalCost"`
	TotalDurationMs int64                    `json:"totalDurationMs"`
	P95LatencyMs    int64                    `json:"p95LatencyMs"`
	ByCategory      map[Category]CategoryStats `json:"byCategory,omitempty"`
	GateResult      GateResult               `json:"gateResult"`
}

// RunMode classifies how a Run's trials were produced.
type RunMode string

const (
	ModeLive      RunMode = "live"
	ModeReplay    RunMode = "replay"
	ModeJudgeOnly RunMode = "judge-only"
)

// SchemaVersion is the current Run artifact schema version.
const SchemaVersion = "1.0.0"

// Run is the persisted JSON artifact for one suite execution.
type Run struct {
	SchemaVersion    string     `json:"schemaVersion"`
	ID               string     `json:"id"`
	SuiteID          string     `json:"suiteId"`
	Mode             RunMode    `json:"mode"`
	Trials           []Trial    `json:"trials"`
	Summary          RunSummary `json:"summary"`
	Timestamp        string     `json:"timestamp"`
	ConfigHash       string     `json:"configHash"`
	FrameworkVersion string     `json:"frameworkVersion"`
}
