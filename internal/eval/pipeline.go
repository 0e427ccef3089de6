package eval

import "context"

// RunPipeline runs the ordered grader list for one case against one
// TargetOutput and scores the results. Case graders, when non-empty, replace
// suite defaults entirely — no merge. Graders run sequentially in list order.
func RunPipeline(ctx context.Context, output TargetOutput, expected *CaseExpected, caseGraders, suiteDefaults []GraderConfig, pctx *Context) ([]GradeResult, CaseResult, error) {
	configs := suiteDefaults
	if len(caseGraders) > 0 {
		configs = caseGraders
	}

	grades := make([]GradeResult, 0, len(configs))
	for _, cfg := range configs {
		g, err := cfg.Grader.Grade(ctx, output, expected, pctx)
		if err != nil {
			return nil, CaseResult{}, err
		}
		grades = append(grades, g)
	}

	return grades, Score(grades, configs), nil
}
