package eval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Suite is a named collection of cases with default graders, an optional
// gate config, bound to a target at RunSuite time.
type Suite struct {
	ID             string
	Cases          []Case
	DefaultGraders []GraderConfig
	Gates          *GateConfig
}

// RunOptions configures one suite execution.
type RunOptions struct {
	TimeoutMs        int64
	Mode             RunMode // defaults to ModeLive
	FrameworkVersion string
	Judge            JudgeFunc
	// Now returns the current wall-clock time; overridable for deterministic tests.
	Now func() time.Time
	// NewID returns a fresh run id; overridable for deterministic tests.
	NewID func() string
}

func (o RunOptions) resolve() RunOptions {
	if o.Mode == "" {
		o.Mode = ModeLive
	}
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 30_000
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = defaultRunID
	}
	return o
}

// RunSuite executes one resolved suite against target. Cases run strictly
// sequentially in declaration order (§5 contract): each case's target call
// and grading finish before the next case starts.
func RunSuite(ctx context.Context, suite Suite, target TargetFunc, opts RunOptions) (Run, error) {
	opts = opts.resolve()
	start := opts.Now()

	pctx := &Context{SuiteID: suite.ID, Mode: opts.Mode, Judge: opts.Judge}

	trials := make([]Trial, 0, len(suite.Cases))
	for _, c := range suite.Cases {
		trial, err := runOneCase(ctx, c, target, suite.DefaultGraders, opts, pctx)
		if err != nil {
			return Run{}, err
		}
		trials = append(trials, trial)
	}

	summary := Summarize(trials, suite.Cases, suite.Gates)
	summary.TotalDurationMs = opts.Now().Sub(start).Milliseconds()
	summary.GateResult = EvaluateGates(summary, suite.Gates)
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

func runOneCase(ctx context.Context, c Case, target TargetFunc, defaultGraders []GraderConfig, opts RunOptions, pctx *Context) (Trial, error) {
	caseCtx := *pctx
	caseCtx.CaseID = c.ID

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
	defer cancel()

	wallStart := time.Now()
	output, err := target(callCtx, c.Input)
	durationMs := time.Since(wallStart).Milliseconds()

	if err != nil {
		text := errorTrialText(callCtx, err, opts.TimeoutMs)
		return Trial{
			CaseID:     c.ID,
			Status:     StatusError,
			Output:     TargetOutput{Text: &text, LatencyMs: durationMs},
			Grades:     nil,
			Score:      0,
			DurationMs: durationMs,
		}, nil
	}

	grades, result, err := RunPipeline(ctx, output, c.Expected, nil, defaultGraders, &caseCtx)
	if err != nil {
		return Trial{}, fmt.Errorf("case %q: grading failed: %w", c.ID, err)
	}

	status := StatusFail
	if result.Pass {
		status = StatusPass
	}

	return Trial{
		CaseID:     c.ID,
		Status:     status,
		Output:     output,
		Grades:     grades,
		Score:      result.Score,
		DurationMs: durationMs,
	}, nil
}

func errorTrialText(ctx context.Context, err error, timeoutMs int64) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Timeout after %dms", timeoutMs)
	}
	return fmt.Sprintf("Target error: %v", err)
}

// Summarize computes the RunSummary for a set of trials plus the cases that
// produced them (needed for byCategory breakdown) and gate config.
func Summarize(trials []Trial, cases []Case, gates *GateConfig) RunSummary {
	var passed, failed, errs int
	var totalCost float64
	latencies := make([]int64, 0, len(trials))

	categoryByCase := make(map[string]Category, len(cases))
	for _, c := range cases {
		if c.Category != "" {
			categoryByCase[c.ID] = c.Category
		}
	}
	hasCategories := len(categoryByCase) > 0
	byCategory := make(map[Category]CategoryStats)

	for _, t := range trials {
		switch t.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusError:
			errs++
		}
		if t.Output.Cost != nil {
			totalCost += *t.Output.Cost
		}
		latencies = append(latencies, t.Output.LatencyMs)

		if hasCategories {
			cat, ok := categoryByCase[t.CaseID]
			if !ok {
				continue
			}
			stats := byCategory[cat]
			stats.Total++
			switch t.Status {
			case StatusPass:
				stats.Passed++
			case StatusFail:
				stats.Failed++
			case StatusError:
				stats.Errors++
			}
			byCategory[cat] = stats
		}
	}

	total := len(trials)
	passRate := 0.0
	if total > 0 {
		passRate = float64(passed) / float64(total)
	}

	for cat, stats := range byCategory {
		if stats.Total > 0 {
			stats.PassRate = float64(stats.Passed) / float64(stats.Total)
		}
		byCategory[cat] = stats
	}

	summary := RunSummary{
		TotalCases:      total,
		Passed:          passed,
		Failed:          failed,
		Errors:          errs,
		PassRate:        passRate,
		TotalCost:       totalCost,
		TotalDurationMs: sumDurations(trials),
		P95LatencyMs:    percentile95(latencies),
	}
	if hasCategories {
		summary.ByCategory = byCategory
	}
	summary.GateResult = EvaluateGates(summary, gates)
	return summary
}

func sumDurations(trials []Trial) int64 {
	var sum int64
	for _, t := range trials {
		sum += t.DurationMs
	}
	return sum
}

// percentile95 returns the value at index ceil(0.95*n)-1 of the sorted
// ascending latencies, clamped to [0, n-1].
func percentile95(latencies []int64) int64 {
	n := len(latencies)
	if n == 0 {
		return 0
	}
	sorted := append([]int64(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(0.95*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

var runIDCounter uint64

func defaultRunID() string {
	runIDCounter++
	return fmt.Sprintf("run-%d-%d", time.Now().UnixNano(), runIDCounter)
}
