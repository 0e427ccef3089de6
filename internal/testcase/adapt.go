package testcase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

// LoadCases resolves a suite's case source (§6): a `.jsonl` path (one case
// per line, see LoadJSONLCases) or a `.yaml`/`.yml` path whose top-level
// document is a bare sequence of cases (see LoadYAMLCases). Any other
// extension is an error naming the supported formats. Neither format carries
// grader configuration — callers that need declarative graders from a file
// use the richer TestSuite document via LoadFromFile/ToSuite instead.
func LoadCases(path string) ([]eval.Case, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return LoadJSONLCases(path)
	case ".yaml", ".yml":
		return LoadYAMLCases(path)
	default:
		return nil, fmt.Errorf("testcase: unsupported case source %q (supported: .jsonl, .yaml, .yml)", path)
	}
}

// ToSuite converts a loaded YAML TestSuite into an eval.Suite, translating
// each case's Expected block and EvaluatorConfig list into GraderConfig
// entries via gradersFromExpected and graderFromEvaluatorConfig.
func ToSuite(ts *TestSuite) (eval.Suite, error) {
	cases, err := casesFromTestSuite(ts)
	if err != nil {
		return eval.Suite{}, err
	}

	defaults, err := defaultGradersFromSuite(ts)
	if err != nil {
		return eval.Suite{}, err
	}

	return eval.Suite{
		ID:             ts.Suite,
		Cases:          cases,
		DefaultGraders: defaults,
	}, nil
}

func casesFromTestSuite(ts *TestSuite) ([]eval.Case, error) {
	cases := make([]eval.Case, 0, len(ts.Cases))
	for _, tc := range ts.Cases {
		cases = append(cases, eval.Case{
			ID:          tc.ID,
			Description: tc.Description,
			Input:       tc.Input,
		})
	}
	if err := eval.ValidateCases(cases); err != nil {
		return nil, fmt.Errorf("testcase: %w", err)
	}
	return cases, nil
}

// defaultGradersFromSuite builds one shared grader list from the first
// case's Expected/Evaluators, mirroring the teacher's one-suite-one-prompt
// convention: every case in a TestSuite is graded the same way, since
// per-case expectations live in the case's own `expected` block rather than
// composing into distinct per-case grader lists.
func defaultGradersFromSuite(ts *TestSuite) ([]eval.GraderConfig, error) {
	var configs []eval.GraderConfig
	for _, tc := range ts.Cases {
		gs, err := gradersFromExpected(tc.Expected)
		if err != nil {
			return nil, err
		}
		configs = append(configs, gs...)
		for _, ec := range tc.Evaluators {
			g, err := graderFromEvaluatorConfig(ec)
			if err != nil {
				return nil, err
			}
			if g != nil {
				// The YAML schema has no field mapping to GraderConfig.Required
				// for evaluators; it defaults to false, matching GraderConfig's
				// own documented zero value.
				configs = append(configs, eval.GraderConfig{Grader: g, Weight: 1})
			}
		}
	}
	return configs, nil
}

func gradersFromExpected(e Expected) ([]eval.GraderConfig, error) {
	var configs []eval.GraderConfig
	if e.ExactMatch != "" {
		configs = append(configs, eval.GraderConfig{Grader: eval.ExactMatch(e.ExactMatch, eval.ExactMatchOptions{}), Weight: 1})
	}
	for _, s := range e.Contains {
		configs = append(configs, eval.GraderConfig{Grader: eval.Contains(s, eval.ContainsOptions{}), Weight: 1})
	}
	for _, s := range e.NotContains {
		configs = append(configs, eval.GraderConfig{Grader: eval.NotContains(s, eval.ContainsOptions{}), Weight: 1})
	}
	for _, pattern := range e.Regex {
		configs = append(configs, eval.GraderConfig{Grader: eval.Regex(pattern, eval.RegexOptions{}), Weight: 1})
	}
	if len(e.JSONSchema) > 0 {
		configs = append(configs, eval.GraderConfig{Grader: eval.JSONSchema(e.JSONSchema), Weight: 1})
	}
	for _, tc := range e.ToolCalls {
		configs = append(configs, eval.GraderConfig{Grader: eval.ToolCalled(tc.Name), Weight: 1, Required: tc.Required})
		if len(tc.ArgsMatch) > 0 {
			configs = append(configs, eval.GraderConfig{
				Grader:   eval.ToolArgsMatch(tc.Name, tc.ArgsMatch, eval.ArgsSubset),
				Weight:   1,
				Required: tc.Required,
			})
		}
	}
	return configs, nil
}

func graderFromEvaluatorConfig(ec EvaluatorConfig) (eval.Grader, error) {
	switch ec.Type {
	case "llm_judge":
		return eval.LLMRubric(eval.LLMRubricOptions{Criteria: ec.Criteria}), nil
	case "factuality":
		return eval.Factuality(eval.LLMRubricOptions{}), nil
	case "tool_selection":
		return eval.ToolSequence(ec.ExpectedTools, eval.SequenceSubset), nil
	case "exact", "contains", "regex", "json_schema", "tool_call":
		// Covered by the Expected block; evaluators entries of these types are
		// legacy aliases from the teacher's config and carry no extra params here.
		return nil, nil
	default:
		// similarity, faithfulness, relevancy, precision, task_completion,
		// efficiency, hallucination, toxicity, bias: no grounded grader
		// implementation in this package yet.
		return nil, nil
	}
}
