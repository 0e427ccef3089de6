package eval

import (
	"math"
	"testing"
)

func trialWith(id string, status TrialStatus, score float64, grades ...GradeResult) Trial {
	return Trial{CaseID: id, Status: status, Score: score, Grades: grades}
}

func TestCompareRunsPassToFailIsAlwaysRegression(t *testing.T) {
	base := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.9)}}
	compare := Run{Trials: []Trial{trialWith("c1", StatusFail, 0.89)}}
	cmp := CompareRuns(base, compare, CompareOptions{})
	if cmp.Cases[0].Direction != DirectionRegression {
		t.Fatalf("expected pass->fail to be regression even with tiny score delta, got %+v", cmp.Cases[0])
	}
}

func TestCompareRunsFailToPassIsAlwaysImprovement(t *testing.T) {
	base := Run{Trials: []Trial{trialWith("c1", StatusFail, 0.1)}}
	compare := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.11)}}
	cmp := CompareRuns(base, compare, CompareOptions{})
	if cmp.Cases[0].Direction != DirectionImprovement {
		t.Fatalf("expected fail->pass to be improvement even with tiny score delta, got %+v", cmp.Cases[0])
	}
}

func TestCompareRunsUnchangedStatusUsesThreshold(t *testing.T) {
	base := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.80)}}
	within := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.82)}}
	beyond := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.90)}}

	r1 := CompareRuns(base, within, CompareOptions{})
	if r1.Cases[0].Direction != DirectionUnchanged {
		t.Fatalf("expected delta within threshold to be unchanged, got %+v", r1.Cases[0])
	}

	r2 := CompareRuns(base, beyond, CompareOptions{})
	if r2.Cases[0].Direction != DirectionImprovement {
		t.Fatalf("expected delta beyond threshold to be improvement, got %+v", r2.Cases[0])
	}
}

func TestCompareRunsAddedAndRemovedCases(t *testing.T) {
	base := Run{Trials: []Trial{trialWith("old", StatusPass, 1)}}
	compare := Run{Trials: []Trial{trialWith("new", StatusPass, 1)}}
	cmp := CompareRuns(base, compare, CompareOptions{})
	if cmp.Summary.Added != 1 || cmp.Summary.Removed != 1 {
		t.Fatalf("expected one added and one removed, got %+v", cmp.Summary)
	}
}

func TestCompareRunsGraderDiffsOnlyForSharedGraders(t *testing.T) {
	base := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.5,
		GradeResult{GraderName: "contains", Score: 0.5},
		GradeResult{GraderName: "onlyInBase", Score: 1},
	)}}
	compare := Run{Trials: []Trial{trialWith("c1", StatusPass, 0.5,
		GradeResult{GraderName: "contains", Score: 0.9},
		GradeResult{GraderName: "onlyInCompare", Score: 1},
	)}}
	cmp := CompareRuns(base, compare, CompareOptions{})
	diffs := cmp.Cases[0].GraderDiffs
	if len(diffs) != 1 || diffs[0].GraderName != "contains" {
		t.Fatalf("expected only shared grader to be diffed, got %+v", diffs)
	}
	if diffs[0].Direction != DirectionImprovement {
		t.Fatalf("expected contains score increase to be improvement, got %+v", diffs[0])
	}
}

func TestCompareRunsAggregateDeltas(t *testing.T) {
	base := Run{
		Trials: []Trial{trialWith("c1", StatusPass, 1)},
		Summary: RunSummary{
			TotalCost: 1.0, TotalDurationMs: 1000,
			GateResult: GateResult{Pass: true},
		},
	}
	compare := Run{
		Trials: []Trial{trialWith("c1", StatusPass, 1)},
		Summary: RunSummary{
			TotalCost: 1.5, TotalDurationMs: 1200,
			GateResult: GateResult{Pass: false},
		},
	}
	cmp := CompareRuns(base, compare, CompareOptions{})
	if cmp.Summary.CostDelta != 0.5 {
		t.Fatalf("expected costDelta 0.5, got %v", cmp.Summary.CostDelta)
	}
	if cmp.Summary.DurationDelta != 200 {
		t.Fatalf("expected durationDelta 200, got %v", cmp.Summary.DurationDelta)
	}
	if cmp.Summary.BaseGatePass != true || cmp.Summary.CompareGatePass != false {
		t.Fatalf("expected gate pass booleans preserved, got %+v", cmp.Summary)
	}
}

func TestCompareRunsCategoryDeltas(t *testing.T) {
	base := Run{Summary: RunSummary{ByCategory: map[Category]CategoryStats{
		CategoryHappyPath: {Total: 10, Passed: 8, PassRate: 0.8},
	}}}
	compare := Run{Summary: RunSummary{ByCategory: map[Category]CategoryStats{
		CategoryHappyPath: {Total: 10, Passed: 9, PassRate: 0.9},
	}}}
	cmp := CompareRuns(base, compare, CompareOptions{})
	if len(cmp.CategoryDeltas) != 1 {
		t.Fatalf("expected one category delta, got %+v", cmp.CategoryDeltas)
	}
	d := cmp.CategoryDeltas[0]
	if d.Category != CategoryHappyPath || math.Abs(d.Delta-0.1) > 1e-9 {
		t.Fatalf("expected happy_path delta 0.1, got %+v", d)
	}
}
