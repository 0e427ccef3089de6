package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// JudgeExample is a calibration example appended to the llmRubric system prompt.
type JudgeExample struct {
	OutputText      string
	ExpectedScore   int
	ExpectedReasoning string
}

// LLMRubricOptions configures the llmRubric grader.
type LLMRubricOptions struct {
	Criteria      string
	Judge         JudgeFunc // factory-level override; takes precedence over context.Judge
	PassThreshold *float64  // default 0.75
	Examples      []JudgeExample
}

const rubricSystemTemplate = `You are an impartial evaluator grading an AI agent's output against the following criteria:

%s

Score strictly on this 4-point integer scale:
1 = poor
2 = below average
3 = good
4 = excellent

Do NOT prefer longer responses over shorter ones.

Respond with JSON and nothing else, in exactly this shape:
{"reasoning": "<your reasoning>", "score": <1-4>}
%s`

func buildExamplesBlock(examples []JudgeExample) string {
	if len(examples) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nCalibration examples:\n")
	for _, ex := range examples {
		fmt.Fprintf(&b, "- output: %q -> score=%d, reasoning=%q\n", ex.OutputText, ex.ExpectedScore, ex.ExpectedReasoning)
	}
	return b.String()
}

func buildRubricUserMessage(output TargetOutput, expected *CaseExpected) string {
	var b strings.Builder
	b.WriteString("<agent_output>\n")
	b.WriteString(textOf(output))
	if len(output.ToolCalls) > 0 {
		b.WriteString("\n\ntool calls:\n")
		for _, tc := range output.ToolCalls {
			fmt.Fprintf(&b, "- %s(%v) -> %v\n", tc.Name, tc.Args, tc.Result)
		}
	}
	b.WriteString("\n</agent_output>")

	if expected != nil {
		b.WriteString("\n<expected_reference>\n")
		if expected.Text != nil {
			fmt.Fprintf(&b, "text: %s\n", *expected.Text)
		}
		if len(expected.ToolCalls) > 0 {
			b.WriteString("tool calls:\n")
			for _, tc := range expected.ToolCalls {
				fmt.Fprintf(&b, "- %s(%v) -> %v\n", tc.Name, tc.Args, tc.Result)
			}
		}
		if len(expected.Metadata) > 0 {
			fmt.Fprintf(&b, "metadata: %v\n", expected.Metadata)
		}
		b.WriteString("</expected_reference>")
	}
	return b.String()
}

// resolveJudge implements the precedence rule: factory opts.judge > context.judge.
func resolveJudge(factoryJudge JudgeFunc, pctx *Context) JudgeFunc {
	if factoryJudge != nil {
		return factoryJudge
	}
	if pctx != nil {
		return pctx.Judge
	}
	return nil
}

// LLMRubric builds a judge-backed grader scoring output against a free-text
// criteria string on the strict 4-point scale, mapped to score = judgeScore*0.25.
func LLMRubric(opts LLMRubricOptions) Grader {
	name := "llmRubric"
	passThreshold := 0.75
	if opts.PassThreshold != nil {
		passThreshold = *opts.PassThreshold
	}

	return newGrader(name, func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
		judge := resolveJudge(opts.Judge, pctx)
		if judge == nil {
			return gradeFail(name, "No judge configured", 0)
		}

		system := fmt.Sprintf(rubricSystemTemplate, opts.Criteria, buildExamplesBlock(opts.Examples))
		user := buildRubricUserMessage(output, expected)

		resp, err := judge(ctx, []JudgeMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		}, JudgeCallOptions{})
		if err != nil {
			return gradeFail(name, fmt.Sprintf("judge call failed: %v", err), 0)
		}

		parsed, err := ParseJudgeResponse(resp.Text)
		if err != nil {
			var pe *JudgeParseError
			if errors.As(err, &pe) {
				return GradeResult{Pass: false, Score: 0, Reason: pe.Message, GraderName: name}, nil
			}
			return gradeFail(name, err.Error(), 0)
		}

		score := float64(parsed.Score) * 0.25
		return GradeResult{
			Pass:       score >= passThreshold,
			Score:      score,
			Reason:     parsed.Reasoning,
			GraderName: name,
			Metadata: map[string]any{
				"reasoning":     parsed.Reasoning,
				"judgeScore":    parsed.Score,
				"judgeModelId":  resp.ModelID,
				"judgeCost":     resp.Cost,
			},
		}, nil
	})
}

const factualityCriteria = `Judge the agent's output for ACCURACY, COMPLETENESS, and NO FABRICATION relative to the expected reference text. Penalize any claim that contradicts or is not supported by the expected reference.`

// Factuality is llmRubric with a fixed criteria comparing output.text against
// expected.text. graderName is always the literal "factuality".
func Factuality(opts LLMRubricOptions) Grader {
	opts.Criteria = factualityCriteria
	inner := LLMRubric(opts)
	return newGrader("factuality", func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
		if expected == nil || expected.Text == nil {
			return GradeResult{Pass: false, Score: 0, Reason: "expected.text is required for factuality", GraderName: "factuality"}, nil
		}
		r, err := inner.Grade(ctx, output, expected, pctx)
		if err != nil {
			return r, err
		}
		r.GraderName = "factuality"
		return r, nil
	})
}
