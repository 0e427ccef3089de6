package main

import (
	"strings"
	"testing"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]OutputFormat{
		"table": FormatTable,
		"TABLE": FormatTable,
		" json ": FormatJSON,
		"JSON":  FormatJSON,
		"":      "",
		"xml":   "",
	}
	for in, want := range cases {
		if got := parseOutputFormat(in); got != want {
			t.Fatalf("parseOutputFormat(%q): got %q want %q", in, got, want)
		}
	}
}

func TestResolveOutputFormatFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	out, err := resolveOutputFormat("json", "table")
	if err != nil {
		t.Fatalf("resolveOutputFormat: %v", err)
	}
	if out != FormatJSON {
		t.Fatalf("got %q want %q", out, FormatJSON)
	}
}

func TestResolveOutputFormatFallsBackToConfig(t *testing.T) {
	t.Parallel()

	out, err := resolveOutputFormat("", "json")
	if err != nil {
		t.Fatalf("resolveOutputFormat: %v", err)
	}
	if out != FormatJSON {
		t.Fatalf("got %q want %q", out, FormatJSON)
	}
}

func TestResolveOutputFormatDefaultsToTable(t *testing.T) {
	t.Parallel()

	out, err := resolveOutputFormat("", "")
	if err != nil {
		t.Fatalf("resolveOutputFormat: %v", err)
	}
	if out != FormatTable {
		t.Fatalf("got %q want %q", out, FormatTable)
	}
}

func TestResolveOutputFormatRejectsInvalidFlag(t *testing.T) {
	t.Parallel()

	if _, err := resolveOutputFormat("xml", "table"); err == nil {
		t.Fatalf("resolveOutputFormat: expected error for invalid --output")
	}
}

func TestColoredStatus(t *testing.T) {
	t.Parallel()

	if !strings.Contains(coloredStatus(true), "PASS") {
		t.Fatalf("coloredStatus(true): expected PASS")
	}
	if !strings.Contains(coloredStatus(false), "FAIL") {
		t.Fatalf("coloredStatus(false): expected FAIL")
	}
}

func TestStatusColor(t *testing.T) {
	t.Parallel()

	if !strings.Contains(statusColor(eval.StatusPass), string(eval.StatusPass)) {
		t.Fatalf("statusColor(pass): missing status text")
	}
	if !strings.Contains(statusColor(eval.StatusFail), string(eval.StatusFail)) {
		t.Fatalf("statusColor(fail): missing status text")
	}
}

func TestFormatRunTableIncludesCasesAndSummary(t *testing.T) {
	t.Parallel()

	run := eval.Run{
		SuiteID: "S1",
		ID:      "run-1",
		Mode:    eval.ModeLive,
		Trials: []eval.Trial{
			{CaseID: "c1", Status: eval.StatusPass, Score: 1.0, DurationMs: 42},
		},
		Summary: eval.RunSummary{
			TotalCases: 1,
			Passed:     1,
			PassRate:   1.0,
			GateResult: eval.GateResult{Pass: true},
		},
	}

	out := formatRunTable(run)
	if !strings.Contains(out, "c1") {
		t.Fatalf("formatRunTable: missing case id, got %q", out)
	}
	if !strings.Contains(out, "Summary:") {
		t.Fatalf("formatRunTable: missing summary line, got %q", out)
	}
	if !strings.Contains(out, "Overall:") {
		t.Fatalf("formatRunTable: missing overall line, got %q", out)
	}
}

func TestFormatComparisonTableIncludesCasesAndSummary(t *testing.T) {
	t.Parallel()

	cmp := eval.RunComparison{
		Cases: []eval.CaseDiff{
			{CaseID: "c1", Direction: eval.DirectionImprovement, BaseStatus: eval.StatusFail, CompareStatus: eval.StatusPass, ScoreDelta: 0.5},
		},
		Summary: eval.ComparisonSummary{
			TotalCases:      1,
			Improvements:    1,
			BaseGatePass:    false,
			CompareGatePass: true,
		},
	}

	out := formatComparisonTable(cmp)
	if !strings.Contains(out, "c1") {
		t.Fatalf("formatComparisonTable: missing case id, got %q", out)
	}
	if !strings.Contains(out, "Base gate:") {
		t.Fatalf("formatComparisonTable: missing base gate line, got %q", out)
	}
}
