package eval

import (
	"context"
	"testing"
)

func constGrader(name string, pass bool, score float64) Grader {
	return newGrader(name, func(context.Context, TargetOutput, *CaseExpected, *Context) (GradeResult, error) {
		return GradeResult{Pass: pass, Score: score, GraderName: name}, nil
	})
}

func TestAllEmptyVacuousPass(t *testing.T) {
	r, _ := All(nil).Grade(context.Background(), TargetOutput{}, nil, nil)
	if !r.Pass || r.Score != 1 {
		t.Fatalf("expected vacuous all() to pass with score 1, got %+v", r)
	}
}

func TestAnyEmptyVacuousFail(t *testing.T) {
	r, _ := Any(nil).Grade(context.Background(), TargetOutput{}, nil, nil)
	if r.Pass || r.Score != 0 {
		t.Fatalf("expected vacuous any() to fail with score 0, got %+v", r)
	}
}

func TestAllScoreIsMinimum(t *testing.T) {
	g := All([]Grader{constGrader("a", true, 0.9), constGrader("b", true, 0.3)})
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if r.Score != 0.3 {
		t.Fatalf("expected min score 0.3, got %v", r.Score)
	}
	if !r.Pass {
		t.Fatalf("expected pass when all sub-graders pass")
	}
}

func TestAnyScoreIsMaximum(t *testing.T) {
	g := Any([]Grader{constGrader("a", false, 0.2), constGrader("b", false, 0.7)})
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if r.Score != 0.7 {
		t.Fatalf("expected max score 0.7, got %v", r.Score)
	}
	if r.Pass {
		t.Fatalf("expected fail when no sub-grader passes")
	}
}

func TestNotNotEqualsOriginal(t *testing.T) {
	g := constGrader("a", true, 0.75)
	r1, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	r2, _ := Not(Not(g)).Grade(context.Background(), TargetOutput{}, nil, nil)
	if r1.Pass != r2.Pass || r1.Score != r2.Score {
		t.Fatalf("not(not(g)) should equal g: %+v vs %+v", r1, r2)
	}
}
