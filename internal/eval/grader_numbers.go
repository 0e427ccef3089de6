package eval

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NoHallucinatedNumbersOptions configures the noHallucinatedNumbers grader.
// Nil fields take their documented defaults.
type NoHallucinatedNumbersOptions struct {
	Tolerance         *float64 // default 0.005
	SkipSmallIntegers *bool    // default true; years 1900-2100 are always skipped
}

var numberPattern = regexp.MustCompile(`-?\d[\d,.]*\d|\d`)

// NoHallucinatedNumbers passes when every non-skipped number in output.text is
// grounded by some number extracted from output.toolCalls[*].result within tolerance.
func NoHallucinatedNumbers(opts NoHallucinatedNumbersOptions) Grader {
	tolerance := 0.005
	if opts.Tolerance != nil {
		tolerance = *opts.Tolerance
	}
	skipSmall := true
	if opts.SkipSmallIntegers != nil {
		skipSmall = *opts.SkipSmallIntegers
	}
	name := "noHallucinatedNumbers"

	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		text := textOf(output)
		candidates := extractNumbers(text)

		var toolNumbers []float64
		for _, tc := range output.ToolCalls {
			toolNumbers = append(toolNumbers, extractNumbersFromValue(tc.Result)...)
		}

		var toCheck []float64
		for _, n := range candidates {
			if isYear(n) {
				continue
			}
			if skipSmall && math.Abs(n) < 10 {
				continue
			}
			toCheck = append(toCheck, n)
		}

		if len(toCheck) == 0 {
			return gradePass(name, "no numbers to check", 1)
		}

		grounded := 0
		var ungrounded []float64
		for _, n := range toCheck {
			if numberGrounded(n, toolNumbers, tolerance) {
				grounded++
			} else {
				ungrounded = append(ungrounded, n)
			}
		}

		score := float64(grounded) / float64(len(toCheck))
		if len(ungrounded) > 0 {
			return gradeFail(name, fmt.Sprintf("ungrounded numbers: %v", ungrounded), score)
		}
		return gradePass(name, "all numbers grounded in tool results", score)
	})
}

func isYear(n float64) bool {
	return n == math.Trunc(n) && n >= 1900 && n <= 2100
}

func numberGrounded(n float64, pool []float64, tolerance float64) bool {
	for _, p := range pool {
		if n == 0 && p == 0 {
			return true
		}
		denom := math.Max(math.Abs(n), math.Abs(p))
		if denom == 0 {
			continue
		}
		if math.Abs(n-p)/denom <= tolerance {
			return true
		}
	}
	return false
}

func extractNumbers(text string) []float64 {
	var out []float64
	for _, m := range numberPattern.FindAllString(text, -1) {
		cleaned := strings.ReplaceAll(m, ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// extractNumbersFromValue recursively walks a decoded-JSON value (object,
// array, number, or string) and collects every number it can find.
func extractNumbersFromValue(v any) []float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return []float64{val}
	case int:
		return []float64{float64(val)}
	case string:
		return extractNumbers(val)
	case map[string]any:
		var out []float64
		for _, vv := range val {
			out = append(out, extractNumbersFromValue(vv)...)
		}
		return out
	case []any:
		var out []float64
		for _, vv := range val {
			out = append(out, extractNumbersFromValue(vv)...)
		}
		return out
	default:
		return nil
	}
}
