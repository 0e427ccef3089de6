package eval

import "context"

// JudgeMessage is one turn in a short-lived, stateless conversation sent to a judge.
type JudgeMessage struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// JudgeCallOptions carries optional per-call overrides for a judge invocation.
type JudgeCallOptions struct {
	ModelID string
}

// JudgeResponse is what a judge call returns: free-form text plus optional metadata.
type JudgeResponse struct {
	Text    string
	ModelID string
	Cost    *float64
}

// JudgeFunc is the judge contract: a short, stateless call to an LLM.
// Implementations may cache; callers must treat calls as independent.
type JudgeFunc func(ctx context.Context, messages []JudgeMessage, opts JudgeCallOptions) (JudgeResponse, error)

// Context is the ambient pipeline context threaded into every grader call.
// It is read-only from the grader's perspective; any per-process state
// (caches, rate limiters) belongs inside the Judge handle, not here.
type Context struct {
	CaseID  string
	SuiteID string
	Mode    RunMode
	Judge   JudgeFunc // resolved handle; nil if no judge configured for this run
}

// TargetFunc is the target contract: produces a TargetOutput for a case's input.
type TargetFunc func(ctx context.Context, input map[string]any) (TargetOutput, error)
