package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
)

func parseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return FormatTable
	case "json":
		return FormatJSON
	default:
		return ""
	}
}

func resolveOutputFormat(flagValue, configValue string) (OutputFormat, error) {
	if strings.TrimSpace(flagValue) != "" {
		out := parseOutputFormat(flagValue)
		if out == "" {
			return "", fmt.Errorf("invalid --output %q (expected table|json)", flagValue)
		}
		return out, nil
	}
	if out := parseOutputFormat(configValue); out != "" {
		return out, nil
	}
	return FormatTable, nil
}

func coloredStatus(pass bool) string {
	if pass {
		return colorGreen + "PASS" + colorReset
	}
	return colorRed + "FAIL" + colorReset
}

func statusColor(status eval.TrialStatus) string {
	switch status {
	case eval.StatusPass:
		return colorGreen + string(status) + colorReset
	default:
		return colorRed + string(status) + colorReset
	}
}

func formatRunTable(run eval.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suite: %s  Run: %s  Mode: %s\n\n", run.SuiteID, run.ID, run.Mode)

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tSTATUS\tSCORE\tDURATION_MS")
	for _, t := range run.Trials {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n", t.CaseID, statusColor(t.Status), t.Score, t.DurationMs)
	}
	_ = tw.Flush()

	s := run.Summary
	fmt.Fprintf(&b, "\nSummary: total=%d passed=%d failed=%d errors=%d passRate=%.2f cost=%.4f p95LatencyMs=%d\n",
		s.TotalCases, s.Passed, s.Failed, s.Errors, s.PassRate, s.TotalCost, s.P95LatencyMs)

	for _, c := range s.GateResult.Checks {
		fmt.Fprintf(&b, "Gate %s: %s (%s)\n", c.Name, coloredStatus(c.Pass), c.Reason)
	}
	fmt.Fprintf(&b, "Overall: %s\n", coloredStatus(s.GateResult.Pass))
	return b.String()
}

func formatComparisonTable(cmp eval.RunComparison) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tDIRECTION\tBASE\tCOMPARE\tSCORE_DELTA")
	for _, c := range cmp.Cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%+.3f\n", c.CaseID, c.Direction, c.BaseStatus, c.CompareStatus, c.ScoreDelta)
	}
	_ = tw.Flush()

	s := cmp.Summary
	fmt.Fprintf(&b, "\nSummary: total=%d added=%d removed=%d regressions=%d improvements=%d unchanged=%d costDelta=%+.4f durationDelta=%+dms\n",
		s.TotalCases, s.Added, s.Removed, s.Regressions, s.Improvements, s.Unchanged, s.CostDelta, s.DurationDelta)
	fmt.Fprintf(&b, "Base gate: %s  Compare gate: %s\n", coloredStatus(s.BaseGatePass), coloredStatus(s.CompareGatePass))
	return b.String()
}
