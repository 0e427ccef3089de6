package eval

import (
	"context"
	"time"
)

// RunJudgeOnly re-runs the pipeline over a previously persisted Run's trial
// outputs without invoking the target (§4.8). For each stored trial, expected
// is looked up by case id from the current suite (absent -> nil); only
// grades, score, and status may change — output, durationMs, and trialIndex
// are preserved verbatim.
func RunJudgeOnly(ctx context.Context, previous Run, suite Suite, opts RunOptions) (Run, error) {
	opts = opts.resolve()
	opts.Mode = ModeJudgeOnly

	expectedByID := make(map[string]*CaseExpected, len(suite.Cases))
	for _, c := range suite.Cases {
		expectedByID[c.ID] = c.Expected
	}

	pctx := &Context{SuiteID: suite.ID, Mode: opts.Mode, Judge: opts.Judge}

	trials := make([]Trial, 0, len(previous.Trials))
	for _, prev := range previous.Trials {
		caseCtx := *pctx
		caseCtx.CaseID = prev.CaseID
		expected := expectedByID[prev.CaseID] // nil if case no longer present

		grades, result, err := RunPipeline(ctx, prev.Output, expected, nil, suite.DefaultGraders, &caseCtx)
		if err != nil {
			return Run{}, err
		}

		status := StatusFail
		if result.Pass {
			status = StatusPass
		}

		trials = append(trials, Trial{
			CaseID:     prev.CaseID,
			Status:     status,
			Output:     prev.Output,
			Grades:     grades,
			Score:      result.Score,
			DurationMs: prev.DurationMs,
			TrialIndex: prev.TrialIndex,
		})
	}

	summary := Summarize(trials, suite.Cases, suite.Gates)
	caseIDs := make([]string, len(suite.Cases))
	for i, c := range suite.Cases {
		caseIDs[i] = c.ID
	}

	return Run{
		SchemaVersion:    SchemaVersion,
		ID:               opts.NewID(),
		SuiteID:          suite.ID,
		Mode:             opts.Mode,
		Trials:           trials,
		Summary:          summary,
		Timestamp:        opts.Now().UTC().Format(time.RFC3339),
		ConfigHash:       ComputeConfigHash(suite.ID, caseIDs, suite.Gates),
		FrameworkVersion: opts.FrameworkVersion,
	}, nil
}
