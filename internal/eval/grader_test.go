package eval

import (
	"context"
	"testing"
)

func textOutput(s string) TargetOutput {
	return TargetOutput{Text: &s}
}

func TestContainsCaseInsensitiveByDefault(t *testing.T) {
	g := Contains("HELLO", ContainsOptions{})
	r, err := g.Grade(context.Background(), textOutput("say hello world"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Pass {
		t.Fatalf("expected pass, got %+v", r)
	}
}

func TestContainsEmptyNeedleAlwaysPasses(t *testing.T) {
	g := Contains("", ContainsOptions{})
	r, _ := g.Grade(context.Background(), textOutput(""), nil, nil)
	if !r.Pass {
		t.Fatalf("expected empty needle to always pass")
	}
}

func TestContainsEmptyHaystackFailsNonEmptyNeedle(t *testing.T) {
	g := Contains("x", ContainsOptions{})
	r, _ := g.Grade(context.Background(), textOutput(""), nil, nil)
	if r.Pass {
		t.Fatalf("expected empty haystack to fail non-empty needle")
	}
}

func TestExactMatchTrimsAndIsCaseSensitiveByDefault(t *testing.T) {
	g := ExactMatch("Hello", ExactMatchOptions{})
	r, _ := g.Grade(context.Background(), textOutput("  Hello  "), nil, nil)
	if !r.Pass {
		t.Fatalf("expected trimmed exact match to pass, got %+v", r)
	}

	r2, _ := g.Grade(context.Background(), textOutput("hello"), nil, nil)
	if r2.Pass {
		t.Fatalf("expected case-sensitive mismatch to fail")
	}
}

func TestRegexFactoryTimePanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid regex")
		}
	}()
	Regex("(unclosed", RegexOptions{})
}

func TestLatencyBoundary(t *testing.T) {
	g := Latency(100)
	r, _ := g.Grade(context.Background(), TargetOutput{LatencyMs: 100}, nil, nil)
	if !r.Pass {
		t.Fatalf("expected latencyMs == max to pass")
	}
	r2, _ := g.Grade(context.Background(), TargetOutput{LatencyMs: 101}, nil, nil)
	if r2.Pass {
		t.Fatalf("expected latencyMs == max+1 to fail")
	}
}

func TestCostMissingSkipsAsPass(t *testing.T) {
	g := Cost(1.0)
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if !r.Pass {
		t.Fatalf("expected missing cost to pass")
	}
}

func TestTokenCountMissingSkipsAsPass(t *testing.T) {
	g := TokenCount(100)
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if !r.Pass {
		t.Fatalf("expected missing tokenUsage to pass")
	}
}

func TestToolCalledEmptyListFails(t *testing.T) {
	g := ToolCalled("search")
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if r.Pass {
		t.Fatalf("expected toolCalled to fail on empty call list")
	}
}

func TestToolNotCalledEmptyListPasses(t *testing.T) {
	g := ToolNotCalled("search")
	r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if !r.Pass {
		t.Fatalf("expected toolNotCalled to pass on empty call list")
	}
}

func TestToolSequenceStrictRejectsLengthMismatch(t *testing.T) {
	g := ToolSequence([]string{"a", "b"}, SequenceStrict)
	out := TargetOutput{ToolCalls: []ToolCall{{Name: "a"}}}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if r.Pass {
		t.Fatalf("expected strict length mismatch to fail")
	}
}

func TestToolSequenceUnorderedRejectsMultisetMismatch(t *testing.T) {
	g := ToolSequence([]string{"a", "a", "b"}, SequenceUnordered)
	out := TargetOutput{ToolCalls: []ToolCall{{Name: "a"}, {Name: "b"}, {Name: "b"}}}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if r.Pass {
		t.Fatalf("expected multiset mismatch to fail")
	}
}

func TestToolSequenceEmptyBothPasses(t *testing.T) {
	for _, mode := range []ToolSequenceMode{SequenceStrict, SequenceUnordered, SequenceSubset, SequenceSuperset} {
		g := ToolSequence(nil, mode)
		r, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
		if !r.Pass {
			t.Fatalf("mode %s: expected empty/empty to pass", mode)
		}
	}
}

func TestToolArgsMatchExact(t *testing.T) {
	g := ToolArgsMatch("search", map[string]any{"q": "hi"}, ArgsExact)
	out := TargetOutput{ToolCalls: []ToolCall{{Name: "search", Args: map[string]any{"q": "hi"}}}}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if !r.Pass {
		t.Fatalf("expected exact args match to pass, got %+v", r)
	}

	out2 := TargetOutput{ToolCalls: []ToolCall{{Name: "search", Args: map[string]any{"q": "hi", "extra": 1}}}}
	r2, _ := g.Grade(context.Background(), out2, nil, nil)
	if r2.Pass {
		t.Fatalf("expected exact mode to reject extra keys")
	}
}

func TestToolArgsMatchContainsSubstring(t *testing.T) {
	g := ToolArgsMatch("search", map[string]any{"q": "hi"}, ArgsContains)
	out := TargetOutput{ToolCalls: []ToolCall{{Name: "search", Args: map[string]any{"q": "say hi there"}}}}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if !r.Pass {
		t.Fatalf("expected contains mode to match substring, got %+v", r)
	}
}

func TestNoHallucinatedNumbersSkipsYearsAndSmallIntegers(t *testing.T) {
	g := NoHallucinatedNumbers(NoHallucinatedNumbersOptions{})
	out := TargetOutput{Text: strPtr("In 2024 we had 3 outages.")}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if !r.Pass {
		t.Fatalf("expected skipped year/small-int to pass, got %+v", r)
	}
}

func TestNoHallucinatedNumbersGroundedByToolResult(t *testing.T) {
	g := NoHallucinatedNumbers(NoHallucinatedNumbersOptions{})
	out := TargetOutput{
		Text: strPtr("Revenue was 104235 dollars."),
		ToolCalls: []ToolCall{
			{Name: "lookup", Result: map[string]any{"revenue": 104200.0}},
		},
	}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if !r.Pass {
		t.Fatalf("expected revenue within tolerance to pass, got %+v", r)
	}
}

func TestNoHallucinatedNumbersUngroundedFails(t *testing.T) {
	g := NoHallucinatedNumbers(NoHallucinatedNumbersOptions{})
	out := TargetOutput{Text: strPtr("Revenue was 999999 dollars.")}
	r, _ := g.Grade(context.Background(), out, nil, nil)
	if r.Pass {
		t.Fatalf("expected ungrounded number to fail")
	}
}

func TestJSONSchemaDistinguishesReasons(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	g := JSONSchema(schema)

	empty, _ := g.Grade(context.Background(), TargetOutput{}, nil, nil)
	if empty.Pass || empty.Reason != "output is empty" {
		t.Fatalf("expected empty reason, got %+v", empty)
	}

	notJSON, _ := g.Grade(context.Background(), textOutput("not json"), nil, nil)
	if notJSON.Pass {
		t.Fatalf("expected not-JSON to fail")
	}

	violates, _ := g.Grade(context.Background(), textOutput(`{"other":1}`), nil, nil)
	if violates.Pass {
		t.Fatalf("expected schema violation to fail")
	}

	ok, _ := g.Grade(context.Background(), textOutput(`{"name":"x"}`), nil, nil)
	if !ok.Pass {
		t.Fatalf("expected valid document to pass, got %+v", ok)
	}
}

func strPtr(s string) *string { return &s }
