package eval

import (
	"context"
	"fmt"
	"strings"
)

// All lifts N graders into one: runs every grader (no short-circuit);
// pass is the conjunction, score is the minimum sub-score. An empty list
// passes vacuously with score 1.
func All(graders []Grader) Grader {
	name := fmt.Sprintf("all(%s)", joinNames(graders))
	return newGrader(name, func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
		if len(graders) == 0 {
			return GradeResult{Pass: true, Score: 1, Reason: "vacuous: no graders", GraderName: name}, nil
		}

		allPass := true
		minScore := 1.0
		reasons := make([]string, 0, len(graders))
		for _, g := range graders {
			r, err := g.Grade(ctx, output, expected, pctx)
			if err != nil {
				return GradeResult{}, err
			}
			if !r.Pass {
				allPass = false
			}
			if r.Score < minScore {
				minScore = r.Score
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", r.GraderName, r.Reason))
		}
		return GradeResult{
			Pass:       allPass,
			Score:      minScore,
			Reason:     strings.Join(reasons, "; "),
			GraderName: name,
		}, nil
	})
}

// Any lifts N graders into one: runs every grader (no short-circuit);
// pass is the disjunction, score is the maximum sub-score. An empty list
// fails with score 0.
func Any(graders []Grader) Grader {
	name := fmt.Sprintf("any(%s)", joinNames(graders))
	return newGrader(name, func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
		if len(graders) == 0 {
			return GradeResult{Pass: false, Score: 0, Reason: "vacuous: no graders", GraderName: name}, nil
		}

		anyPass := false
		maxScore := 0.0
		reasons := make([]string, 0, len(graders))
		for _, g := range graders {
			r, err := g.Grade(ctx, output, expected, pctx)
			if err != nil {
				return GradeResult{}, err
			}
			if r.Pass {
				anyPass = true
			}
			if r.Score > maxScore {
				maxScore = r.Score
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", r.GraderName, r.Reason))
		}
		return GradeResult{
			Pass:       anyPass,
			Score:      maxScore,
			Reason:     strings.Join(reasons, "; "),
			GraderName: name,
		}, nil
	})
}

// Not negates a grader's pass and complements its score.
func Not(g Grader) Grader {
	name := fmt.Sprintf("not(%s)", g.Name())
	return newGrader(name, func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
		r, err := g.Grade(ctx, output, expected, pctx)
		if err != nil {
			return GradeResult{}, err
		}
		return GradeResult{
			Pass:       !r.Pass,
			Score:      1 - r.Score,
			Reason:     fmt.Sprintf("not(%s)", r.Reason),
			GraderName: name,
		}, nil
	})
}

func joinNames(graders []Grader) string {
	names := make([]string, len(graders))
	for i, g := range graders {
		names[i] = g.Name()
	}
	return strings.Join(names, ",")
}
