package eval

import (
	"context"
	"errors"
	"testing"
)

func fakeJudge(text string, err error) JudgeFunc {
	return func(context.Context, []JudgeMessage, JudgeCallOptions) (JudgeResponse, error) {
		return JudgeResponse{Text: text, ModelID: "fake-model"}, err
	}
}

func TestResolveJudgeFactoryTakesPrecedence(t *testing.T) {
	factory := fakeJudge(`{"score":4}`, nil)
	pctx := &Context{Judge: fakeJudge(`{"score":1}`, nil)}
	got := resolveJudge(factory, pctx)
	resp, _ := got(context.Background(), nil, JudgeCallOptions{})
	if resp.Text != `{"score":4}` {
		t.Fatalf("expected factory judge to win, got %q", resp.Text)
	}
}

func TestResolveJudgeFallsBackToContext(t *testing.T) {
	pctx := &Context{Judge: fakeJudge(`{"score":2}`, nil)}
	got := resolveJudge(nil, pctx)
	if got == nil {
		t.Fatalf("expected context judge to be used")
	}
}

func TestResolveJudgeNilWhenNeitherConfigured(t *testing.T) {
	if resolveJudge(nil, nil) != nil {
		t.Fatalf("expected nil judge")
	}
	if resolveJudge(nil, &Context{}) != nil {
		t.Fatalf("expected nil judge when context has none configured")
	}
}

func TestLLMRubricNoJudgeConfiguredFails(t *testing.T) {
	g := LLMRubric(LLMRubricOptions{Criteria: "be helpful"})
	r, err := g.Grade(context.Background(), textOutput("hi"), nil, &Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Pass {
		t.Fatalf("expected fail when no judge is configured")
	}
}

func TestLLMRubricScoreMapsToQuarterScale(t *testing.T) {
	g := LLMRubric(LLMRubricOptions{
		Criteria: "be helpful",
		Judge:    fakeJudge(`{"reasoning":"solid","score":4}`, nil),
	})
	r, err := g.Grade(context.Background(), textOutput("hi"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 1.0 {
		t.Fatalf("expected score 1.0 for judgeScore=4, got %v", r.Score)
	}
	if !r.Pass {
		t.Fatalf("expected pass at default 0.75 threshold")
	}
}

func TestLLMRubricJudgeErrorNeverPasses(t *testing.T) {
	g := LLMRubric(LLMRubricOptions{
		Criteria: "be helpful",
		Judge:    fakeJudge("", errors.New("network down")),
	})
	r, err := g.Grade(context.Background(), textOutput("hi"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Pass {
		t.Fatalf("expected judge-call failure to never pass")
	}
}

func TestLLMRubricUnparseableResponseNeverPasses(t *testing.T) {
	g := LLMRubric(LLMRubricOptions{
		Criteria: "be helpful",
		Judge:    fakeJudge("not json at all and no score pattern", nil),
	})
	r, err := g.Grade(context.Background(), textOutput("hi"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Pass {
		t.Fatalf("expected unparseable judge response to never pass")
	}
}

func TestFactualityRequiresExpectedText(t *testing.T) {
	g := Factuality(LLMRubricOptions{Judge: fakeJudge(`{"score":4}`, nil)})
	r, err := g.Grade(context.Background(), textOutput("hi"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Pass {
		t.Fatalf("expected missing expected.text to fail")
	}
	if r.GraderName != "factuality" {
		t.Fatalf("expected graderName to be factuality, got %q", r.GraderName)
	}
}

func TestFactualityForcesGraderName(t *testing.T) {
	expected := &CaseExpected{Text: strPtr("The sky is blue.")}
	g := Factuality(LLMRubricOptions{Judge: fakeJudge(`{"reasoning":"matches","score":4}`, nil)})
	r, err := g.Grade(context.Background(), textOutput("The sky is blue."), expected, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.GraderName != "factuality" {
		t.Fatalf("expected graderName factuality, got %q", r.GraderName)
	}
	if !r.Pass {
		t.Fatalf("expected pass, got %+v", r)
	}
}
