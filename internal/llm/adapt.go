package llm

import (
	"context"
	"fmt"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

// TargetFromProvider adapts a Provider into an eval.TargetFunc: the case
// input's optional "system" string plus its "prompt" (or, when there is no
// prompt, its "messages" list) becomes the request, and the provider's
// result becomes the TargetOutput the grader pipeline scores. The request
// built from the input carries no tool definitions, so the multi-turn tool
// loop is not entered and the result is that of one CompleteWithTools call.
// The adapter is provider-agnostic: the model is whatever p was built with.
func TargetFromProvider(p Provider, toolExecutor func(ToolUse) (string, error), maxSteps int) eval.TargetFunc {
	return func(ctx context.Context, input map[string]any) (eval.TargetOutput, error) {
		req, err := requestFromInput(input)
		if err != nil {
			return eval.TargetOutput{}, err
		}

		if len(req.Tools) > 0 && toolExecutor != nil {
			if loop, ok := p.(ToolLoopProvider); ok {
				res, err := loop.CompleteMultiTurn(ctx, req, toolExecutor, maxSteps)
				if err != nil {
					return eval.TargetOutput{}, err
				}
				return targetOutputFromMultiTurn(res), nil
			}
		}

		res, err := p.CompleteWithTools(ctx, req)
		if err != nil {
			return eval.TargetOutput{}, err
		}
		if res.Error != nil {
			return eval.TargetOutput{}, res.Error
		}
		return targetOutputFromEvalResult(res), nil
	}
}

// JudgeFromProvider adapts a Provider's plain Complete call into an
// eval.JudgeFunc for llmRubric/factuality graders.
func JudgeFromProvider(p Provider) eval.JudgeFunc {
	return func(ctx context.Context, messages []eval.JudgeMessage, opts eval.JudgeCallOptions) (eval.JudgeResponse, error) {
		req := &Request{MaxTokens: 1024}
		for _, m := range messages {
			if m.Role == "system" {
				req.System = m.Content
				continue
			}
			req.Messages = append(req.Messages, Message{Role: m.Role, Content: m.Content})
		}

		resp, err := p.Complete(ctx, req)
		if err != nil {
			return eval.JudgeResponse{}, err
		}

		var text string
		for _, block := range resp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}

		cost := estimateCost(p.Name(), resp.Usage)
		return eval.JudgeResponse{Text: text, ModelID: p.Name(), Cost: &cost}, nil
	}
}

func requestFromInput(input map[string]any) (*Request, error) {
	req := &Request{MaxTokens: 4096}
	if sys, ok := input["system"].(string); ok {
		req.System = sys
	}
	if prompt, ok := input["prompt"].(string); ok {
		req.Messages = []Message{{Role: "user", Content: prompt}}
		return req, nil
	}
	if rawMsgs, ok := input["messages"].([]any); ok {
		for _, rm := range rawMsgs {
			m, ok := rm.(map[string]any)
			if !ok {
				continue
			}
			role, _ := m["role"].(string)
			content, _ := m["content"].(string)
			req.Messages = append(req.Messages, Message{Role: role, Content: content})
		}
		return req, nil
	}
	return nil, fmt.Errorf("llm: case input missing \"prompt\" or \"messages\"")
}

func targetOutputFromEvalResult(res *EvalResult) eval.TargetOutput {
	text := res.TextContent
	out := eval.TargetOutput{
		Text:      &text,
		LatencyMs: res.LatencyMs,
		TokenUsage: &eval.TokenUsage{
			Input:  res.InputTokens,
			Output: res.OutputTokens,
		},
	}
	for _, tc := range res.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, eval.ToolCall{Name: tc.Name, Args: tc.Input})
	}
	return out
}

func targetOutputFromMultiTurn(res *MultiTurnResult) eval.TargetOutput {
	var text string
	if res.FinalResponse != nil {
		for _, block := range res.FinalResponse.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
	}
	out := eval.TargetOutput{
		Text:      &text,
		LatencyMs: res.TotalLatencyMs,
		TokenUsage: &eval.TokenUsage{
			Input:  res.TotalInputTokens,
			Output: res.TotalOutputTokens,
		},
	}
	for _, tc := range res.AllToolCalls {
		out.ToolCalls = append(out.ToolCalls, eval.ToolCall{Name: tc.Name, Args: tc.Input})
	}
	return out
}

// estimateCost is a placeholder per-provider pricing table used for the
// judge call's reported cost; providers not listed cost 0.
func estimateCost(providerName string, usage Usage) float64 {
	var inputPerM, outputPerM float64
	switch providerName {
	case "claude":
		inputPerM, outputPerM = 3.0, 15.0
	case "openai":
		inputPerM, outputPerM = 2.5, 10.0
	default:
		return 0
	}
	return float64(usage.InputTokens)/1_000_000*inputPerM + float64(usage.OutputTokens)/1_000_000*outputPerM
}
