package eval

import "math"

// Direction classifies a case's or grader's change between two runs.
type Direction string

const (
	DirectionAdded       Direction = "added"
	DirectionRemoved     Direction = "removed"
	DirectionRegression  Direction = "regression"
	DirectionImprovement Direction = "improvement"
	DirectionUnchanged   Direction = "unchanged"
)

// GraderDiff is the per-grader comparison between two paired trials.
type GraderDiff struct {
	GraderName string    `json:"graderName"`
	BaseScore  float64   `json:"baseScore"`
	CompareScore float64 `json:"compareScore"`
	ScoreDelta float64   `json:"scoreDelta"`
	Direction  Direction `json:"direction"`
}

// CaseDiff is the per-case comparison between two Runs.
type CaseDiff struct {
	CaseID      string       `json:"caseId"`
	Direction   Direction    `json:"direction"`
	BaseStatus  TrialStatus  `json:"baseStatus,omitempty"`
	CompareStatus TrialStatus `json:"compareStatus,omitempty"`
	ScoreDelta  float64      `json:"scoreDelta"`
	GraderDiffs []GraderDiff `json:"graderDiffs,omitempty"`
}

// CategoryDelta is the per-category pass-rate comparison.
type CategoryDelta struct {
	Category        Category `json:"category"`
	BasePassRate    float64  `json:"basePassRate"`
	ComparePassRate float64  `json:"comparePassRate"`
	Delta           float64  `json:"delta"`
}

// ComparisonSummary is the aggregate comparison between two Runs.
type ComparisonSummary struct {
	TotalCases   int     `json:"totalCases"`
	Added        int     `json:"added"`
	Removed      int     `json:"removed"`
	Regressions  int     `json:"regressions"`
	Improvements int     `json:"improvements"`
	Unchanged    int     `json:"unchanged"`
	CostDelta    float64 `json:"costDelta"`
	DurationDelta int64  `json:"durationDelta"`
	BaseGatePass  bool   `json:"baseGatePass"`
	CompareGatePass bool `json:"compareGatePass"`
}

// RunComparison is the full diff between two Runs.
type RunComparison struct {
	Cases          []CaseDiff      `json:"cases"`
	CategoryDeltas []CategoryDelta `json:"categoryDeltas"`
	Summary        ComparisonSummary `json:"summary"`
}

// CompareOptions configures run-to-run comparison.
type CompareOptions struct {
	ScoreThreshold *float64 // default 0.05
}

// CompareRuns implements §4.9: per-case classification, per-grader diffs,
// category deltas, and an aggregate summary.
func CompareRuns(base, compare Run, opts CompareOptions) RunComparison {
	threshold := 0.05
	if opts.ScoreThreshold != nil {
		threshold = *opts.ScoreThreshold
	}

	baseByID := trialsByID(base.Trials)
	compareByID := trialsByID(compare.Trials)

	order := unionOrder(base.Trials, compare.Trials)

	var diffs []CaseDiff
	var regressions, improvements, unchanged, added, removed int

	for _, id := range order {
		bt, inBase := baseByID[id]
		ct, inCompare := compareByID[id]

		switch {
		case !inBase && inCompare:
			added++
			diffs = append(diffs, CaseDiff{CaseID: id, Direction: DirectionAdded, CompareStatus: ct.Status, ScoreDelta: ct.Score})

		case inBase && !inCompare:
			removed++
			diffs = append(diffs, CaseDiff{CaseID: id, Direction: DirectionRemoved, BaseStatus: bt.Status, ScoreDelta: -bt.Score})

		default:
			scoreDelta := ct.Score - bt.Score
			dir := classify(bt.Status, ct.Status, scoreDelta, threshold)
			switch dir {
			case DirectionRegression:
				regressions++
			case DirectionImprovement:
				improvements++
			case DirectionUnchanged:
				unchanged++
			}
			diffs = append(diffs, CaseDiff{
				CaseID:        id,
				Direction:     dir,
				BaseStatus:    bt.Status,
				CompareStatus: ct.Status,
				ScoreDelta:    scoreDelta,
				GraderDiffs:   diffGraders(bt.Grades, ct.Grades, threshold),
			})
		}
	}

	return RunComparison{
		Cases:          diffs,
		CategoryDeltas: compareCategoryDeltas(base.Summary, compare.Summary),
		Summary: ComparisonSummary{
			TotalCases:      len(order),
			Added:           added,
			Removed:         removed,
			Regressions:     regressions,
			Improvements:    improvements,
			Unchanged:       unchanged,
			CostDelta:       compare.Summary.TotalCost - base.Summary.TotalCost,
			DurationDelta:   compare.Summary.TotalDurationMs - base.Summary.TotalDurationMs,
			BaseGatePass:    base.Summary.GateResult.Pass,
			CompareGatePass: compare.Summary.GateResult.Pass,
		},
	}
}

func classify(baseStatus, compareStatus TrialStatus, scoreDelta, threshold float64) Direction {
	wasPass := baseStatus == StatusPass
	isPass := compareStatus == StatusPass

	if wasPass && !isPass {
		return DirectionRegression
	}
	if !wasPass && isPass {
		return DirectionImprovement
	}
	if math.Abs(scoreDelta) <= threshold {
		return DirectionUnchanged
	}
	if scoreDelta < -threshold {
		return DirectionRegression
	}
	return DirectionImprovement
}

func diffGraders(baseGrades, compareGrades []GradeResult, threshold float64) []GraderDiff {
	baseByName := make(map[string]GradeResult, len(baseGrades))
	for _, g := range baseGrades {
		baseByName[g.GraderName] = g
	}

	var diffs []GraderDiff
	for _, cg := range compareGrades {
		bg, ok := baseByName[cg.GraderName]
		if !ok {
			continue
		}
		delta := cg.Score - bg.Score
		dir := DirectionUnchanged
		if math.Abs(delta) > threshold {
			if delta < 0 {
				dir = DirectionRegression
			} else {
				dir = DirectionImprovement
			}
		}
		diffs = append(diffs, GraderDiff{
			GraderName:   cg.GraderName,
			BaseScore:    bg.Score,
			CompareScore: cg.Score,
			ScoreDelta:   delta,
			Direction:    dir,
		})
	}
	return diffs
}

func compareCategoryDeltas(base, compare RunSummary) []CategoryDelta {
	cats := make(map[Category]struct{})
	for c := range base.ByCategory {
		cats[c] = struct{}{}
	}
	for c := range compare.ByCategory {
		cats[c] = struct{}{}
	}

	var deltas []CategoryDelta
	for c := range cats {
		b := base.ByCategory[c].PassRate
		cmp := compare.ByCategory[c].PassRate
		deltas = append(deltas, CategoryDelta{
			Category:        c,
			BasePassRate:    b,
			ComparePassRate: cmp,
			Delta:           cmp - b,
		})
	}
	return deltas
}

func trialsByID(trials []Trial) map[string]Trial {
	m := make(map[string]Trial, len(trials))
	for _, t := range trials {
		m[t.CaseID] = t
	}
	return m
}

func unionOrder(base, compare []Trial) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, t := range base {
		if _, ok := seen[t.CaseID]; !ok {
			seen[t.CaseID] = struct{}{}
			order = append(order, t.CaseID)
		}
	}
	for _, t := range compare {
		if _, ok := seen[t.CaseID]; !ok {
			seen[t.CaseID] = struct{}{}
			order = append(order, t.CaseID)
		}
	}
	return order
}
