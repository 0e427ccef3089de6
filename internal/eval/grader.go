package eval

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// graderFunc is the standard Grader implementation: a name plus a closure.
// Every factory in this file returns one, mirroring the teacher's
// Name()+Evaluate() evaluator shape while keeping each grader a plain closure
// internally.
type graderFunc struct {
	name string
	fn   func(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error)
}

func (g graderFunc) Name() string { return g.name }

func (g graderFunc) Grade(ctx context.Context, output TargetOutput, expected *CaseExpected, pctx *Context) (GradeResult, error) {
	return g.fn(ctx, output, expected, pctx)
}

func newGrader(name string, fn func(context.Context, TargetOutput, *CaseExpected, *Context) (GradeResult, error)) Grader {
	return graderFunc{name: name, fn: fn}
}

func textOf(output TargetOutput) string {
	if output.Text == nil {
		return ""
	}
	return *output.Text
}

func gradePass(name, reason string, score float64) (GradeResult, error) {
	return GradeResult{Pass: true, Score: score, Reason: reason, GraderName: name}, nil
}

func gradeFail(name, reason string, score float64) (GradeResult, error) {
	return GradeResult{Pass: false, Score: score, Reason: reason, GraderName: name}, nil
}

// ContainsOptions configures the contains/notContains graders.
type ContainsOptions struct {
	CaseSensitive bool
}

// Contains passes when s appears as a substring of output.text.
// Case-insensitive by default; an empty needle always passes.
func Contains(s string, opts ContainsOptions) Grader {
	name := fmt.Sprintf("contains(%q)", s)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		if s == "" {
			return gradePass(name, "empty needle always passes", 1)
		}
		text := textOf(output)
		needle, haystack := s, text
		if !opts.CaseSensitive {
			needle, haystack = strings.ToLower(s), strings.ToLower(text)
		}
		if strings.Contains(haystack, needle) {
			return gradePass(name, fmt.Sprintf("output contains %q", s), 1)
		}
		return gradeFail(name, fmt.Sprintf("output does not contain %q", s), 0)
	})
}

// NotContains passes when s is absent from output.text; an empty output passes.
func NotContains(s string, opts ContainsOptions) Grader {
	name := fmt.Sprintf("notContains(%q)", s)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		text := textOf(output)
		if text == "" {
			return gradePass(name, "empty output passes", 1)
		}
		needle, haystack := s, text
		if !opts.CaseSensitive {
			needle, haystack = strings.ToLower(s), strings.ToLower(text)
		}
		if needle != "" && strings.Contains(haystack, needle) {
			return gradeFail(name, fmt.Sprintf("output contains forbidden %q", s), 0)
		}
		return gradePass(name, fmt.Sprintf("output does not contain %q", s), 1)
	})
}

// ExactMatchOptions configures the exactMatch grader.
type ExactMatchOptions struct {
	Trim          *bool // default true
	CaseSensitive *bool // default true
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// ExactMatch passes when output.text equals s after optional trim/case-fold.
func ExactMatch(s string, opts ExactMatchOptions) Grader {
	name := fmt.Sprintf("exactMatch(%q)", s)
	trim := boolOr(opts.Trim, true)
	caseSensitive := boolOr(opts.CaseSensitive, true)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		got := textOf(output)
		want := s
		if trim {
			got = strings.TrimSpace(got)
			want = strings.TrimSpace(want)
		}
		if !caseSensitive {
			got = strings.ToLower(got)
			want = strings.ToLower(want)
		}
		if got == want {
			return gradePass(name, "exact match", 1)
		}
		return gradeFail(name, fmt.Sprintf("got %q, want %q", got, want), 0)
	})
}

// RegexOptions configures the regex grader.
type RegexOptions struct {
	Flags string // e.g. "i" for case-insensitive
}

// Regex compiles pat eagerly (factory time) and passes when it matches output.text.
// An invalid pattern panics at factory time, never at grade time.
func Regex(pat string, opts RegexOptions) Grader {
	expr := pat
	if strings.Contains(opts.Flags, "i") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("eval.Regex: invalid pattern %q: %v", pat, err))
	}
	name := fmt.Sprintf("regex(%q)", pat)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		text := textOf(output)
		if re.MatchString(text) {
			return gradePass(name, fmt.Sprintf("matched %q", pat), 1)
		}
		return gradeFail(name, fmt.Sprintf("no match for %q", pat), 0)
	})
}

// SafetyKeywords passes when none of the keywords appear (case-insensitive) in output.text.
func SafetyKeywords(keywords []string) Grader {
	name := "safetyKeywords"
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		haystack := strings.ToLower(textOf(output))
		for _, k := range keywords {
			if k == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(k)) {
				return gradeFail(name, fmt.Sprintf("found unsafe keyword %q", k), 0)
			}
		}
		return gradePass(name, "no unsafe keywords found", 1)
	})
}

// ToolCalled passes when a tool call named name is present; an empty call list fails.
func ToolCalled(name string) Grader {
	gname := fmt.Sprintf("toolCalled(%q)", name)
	return newGrader(gname, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		for _, tc := range output.ToolCalls {
			if tc.Name == name {
				return gradePass(gname, fmt.Sprintf("%q was called", name), 1)
			}
		}
		return gradeFail(gname, fmt.Sprintf("%q was not called", name), 0)
	})
}

// ToolNotCalled passes when no tool call named name is present; an empty call list passes.
func ToolNotCalled(name string) Grader {
	gname := fmt.Sprintf("toolNotCalled(%q)", name)
	return newGrader(gname, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		for _, tc := range output.ToolCalls {
			if tc.Name == name {
				return gradeFail(gname, fmt.Sprintf("%q was called", name), 0)
			}
		}
		return gradePass(gname, fmt.Sprintf("%q was not called", name), 1)
	})
}

// ToolSequenceMode is a comparison mode for the toolSequence grader.
type ToolSequenceMode string

const (
	SequenceStrict    ToolSequenceMode = "strict"
	SequenceUnordered ToolSequenceMode = "unordered"
	SequenceSubset    ToolSequenceMode = "subset"
	SequenceSuperset  ToolSequenceMode = "superset"
)

// ToolSequence checks the ordered/unordered/subset/superset relationship
// between the expected tool-call names and the actual ones.
func ToolSequence(names []string, mode ToolSequenceMode) Grader {
	gname := fmt.Sprintf("toolSequence(%v,%s)", names, mode)
	return newGrader(gname, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		actual := make([]string, len(output.ToolCalls))
		for i, tc := range output.ToolCalls {
			actual[i] = tc.Name
		}

		switch mode {
		case SequenceStrict:
			if len(actual) != len(names) {
				return gradeFail(gname, fmt.Sprintf("length mismatch: got %d, want %d", len(actual), len(names)), 0)
			}
			for i := range names {
				if actual[i] != names[i] {
					return gradeFail(gname, fmt.Sprintf("position %d: got %q, want %q", i, actual[i], names[i]), 0)
				}
			}
			return gradePass(gname, "sequence matches exactly", 1)

		case SequenceUnordered:
			if !multisetEqual(actual, names) {
				return gradeFail(gname, "multiset of tool calls does not match", 0)
			}
			return gradePass(gname, "multiset of tool calls matches", 1)

		case SequenceSubset:
			for _, n := range names {
				if !containsStr(actual, n) {
					return gradeFail(gname, fmt.Sprintf("expected %q not found", n), 0)
				}
			}
			return gradePass(gname, "all expected names present", 1)

		case SequenceSuperset:
			for _, a := range actual {
				if !containsStr(names, a) {
					return gradeFail(gname, fmt.Sprintf("unexpected call %q", a), 0)
				}
			}
			return gradePass(gname, "no unexpected calls", 1)

		default:
			return gradeFail(gname, fmt.Sprintf("unknown mode %q", mode), 0)
		}
	})
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func multisetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// ToolArgsMatchMode is a comparison mode for the toolArgsMatch grader.
type ToolArgsMatchMode string

const (
	ArgsExact    ToolArgsMatchMode = "exact"
	ArgsSubset   ToolArgsMatchMode = "subset"
	ArgsContains ToolArgsMatchMode = "contains"
)

// ToolArgsMatch locates the first tool call named name and checks its args
// against expected per mode; an absent call always fails.
func ToolArgsMatch(name string, expected map[string]any, mode ToolArgsMatchMode) Grader {
	gname := fmt.Sprintf("toolArgsMatch(%q,%s)", name, mode)
	return newGrader(gname, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		var call *ToolCall
		for i := range output.ToolCalls {
			if output.ToolCalls[i].Name == name {
				call = &output.ToolCalls[i]
				break
			}
		}
		if call == nil {
			return gradeFail(gname, fmt.Sprintf("tool %q was not called", name), 0)
		}

		switch mode {
		case ArgsExact:
			if len(call.Args) != len(expected) {
				return gradeFail(gname, "key set differs", 0)
			}
			for k, want := range expected {
				got, ok := call.Args[k]
				if !ok {
					return gradeFail(gname, fmt.Sprintf("missing key %q", k), 0)
				}
				if ok, reason := matchArgValue(got, want, k, false); !ok {
					return gradeFail(gname, reason, 0)
				}
			}
			return gradePass(gname, "args match exactly", 1)

		case ArgsSubset:
			for k, want := range expected {
				got, ok := call.Args[k]
				if !ok {
					return gradeFail(gname, fmt.Sprintf("missing key %q", k), 0)
				}
				if ok, reason := matchArgValue(got, want, k, false); !ok {
					return gradeFail(gname, reason, 0)
				}
			}
			return gradePass(gname, "args are a superset of expected", 1)

		case ArgsContains:
			for k, want := range expected {
				got, ok := call.Args[k]
				if !ok {
					return gradeFail(gname, fmt.Sprintf("missing key %q", k), 0)
				}
				if ok, reason := matchArgValue(got, want, k, true); !ok {
					return gradeFail(gname, reason, 0)
				}
			}
			return gradePass(gname, "args contain expected values", 1)

		default:
			return gradeFail(gname, fmt.Sprintf("unknown mode %q", mode), 0)
		}
	})
}

func matchArgValue(got, want any, key string, substrOK bool) (bool, string) {
	if substrOK {
		if ws, ok := want.(string); ok {
			if gs, ok := got.(string); ok {
				if strings.Contains(gs, ws) {
					return true, ""
				}
				return false, fmt.Sprintf("key %q: %q does not contain %q", key, gs, ws)
			}
		}
	}
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		if gf == wf {
			return true, ""
		}
		return false, fmt.Sprintf("key %q: got %v, want %v", key, got, want)
	}
	if deepEqualValue(got, want) {
		return true, ""
	}
	return false, fmt.Sprintf("key %q: got %v, want %v", key, got, want)
}

// deepEqualValue compares arbitrary decoded-JSON values structurally,
// recursing through maps/slices so nested args match regardless of map type.
func deepEqualValue(got, want any) bool {
	if gm, ok := got.(map[string]any); ok {
		wm, ok := want.(map[string]any)
		if !ok || len(gm) != len(wm) {
			return false
		}
		for k, gv := range gm {
			wv, ok := wm[k]
			if !ok || !deepEqualValue(gv, wv) {
				return false
			}
		}
		return true
	}
	if gs, ok := got.([]any); ok {
		ws, ok := want.([]any)
		if !ok || len(gs) != len(ws) {
			return false
		}
		for i := range gs {
			if !deepEqualValue(gs[i], ws[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(got, want)
}

// Latency passes when output.latencyMs <= maxMs.
func Latency(maxMs int64) Grader {
	name := fmt.Sprintf("latency(%d)", maxMs)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		if output.LatencyMs <= maxMs {
			return gradePass(name, fmt.Sprintf("%dms <= %dms", output.LatencyMs, maxMs), 1)
		}
		return gradeFail(name, fmt.Sprintf("%dms > %dms", output.LatencyMs, maxMs), 0)
	})
}

// Cost passes when output.cost <= maxDollars, or the field is missing.
func Cost(maxDollars float64) Grader {
	name := fmt.Sprintf("cost(%v)", maxDollars)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		if output.Cost == nil {
			return gradePass(name, "cost not reported, skipping", 1)
		}
		if *output.Cost <= maxDollars {
			return gradePass(name, fmt.Sprintf("%v <= %v", *output.Cost, maxDollars), 1)
		}
		return gradeFail(name, fmt.Sprintf("%v > %v", *output.Cost, maxDollars), 0)
	})
}

// TokenCount passes when input+output tokens <= max, or the field is missing.
func TokenCount(max int) Grader {
	name := fmt.Sprintf("tokenCount(%d)", max)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		if output.TokenUsage == nil {
			return gradePass(name, "tokenUsage not reported, skipping", 1)
		}
		total := output.TokenUsage.Input + output.TokenUsage.Output
		if total <= max {
			return gradePass(name, fmt.Sprintf("%d <= %d", total, max), 1)
		}
		return gradeFail(name, fmt.Sprintf("%d > %d", total, max), 0)
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
