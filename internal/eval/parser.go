package eval

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// JudgeParseError is returned when no layer of the judge parser could
// extract a valid {reasoning, score} pair. Callers MUST surface this as
// pass=false — it is never treated as a silent pass.
type JudgeParseError struct {
	Raw     string
	Message string
}

func (e *JudgeParseError) Error() string {
	return e.Message
}

// ParsedJudgeResult is the validated {reasoning, score} extracted from judge text.
type ParsedJudgeResult struct {
	Reasoning string
	Score     int // 1..4
}

const maxReasoningLen = 2000

var jsonFieldAliases = struct {
	score     []string
	reasoning []string
}{
	score:     []string{"score", "rating", "total_rating"},
	reasoning: []string{"reasoning", "evaluation", "explanation", "rationale"},
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// textPattern matches "score|rating : N" (N in 1-4, not followed by another digit).
// Go's RE2 engine has no lookaround, so a trailing \b stands in for the
// negative lookahead in the distilled spec's parser description: digits are
// word characters, so "10" has no boundary after its leading "1".
var textScorePattern = regexp.MustCompile(`(?is)(?:score|rating)\s*:?\s*([1-4])\b`)
var textReasoningPattern = regexp.MustCompile(`(?is)(reasoning|evaluation|explanation)\s*:\s*(.+?)(?:\n(?:score|rating)\s*:|$)`)

// ParseJudgeResponse runs the three-layer fallback parser over raw judge text.
// It never returns success with a score outside {1,2,3,4}.
func ParseJudgeResponse(raw string) (ParsedJudgeResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedJudgeResult{}, &JudgeParseError{Raw: raw, Message: "judge response is empty"}
	}

	// Layer 1: strict JSON.
	if r, ok := tryParseJSONObject(trimmed); ok {
		return validateParsed(r, raw)
	}

	// Layer 2: extracted JSON (fenced block, else first {...last}).
	if block := extractFencedJSON(trimmed); block != "" {
		if r, ok := tryParseJSONObject(block); ok {
			return validateParsed(r, raw)
		}
	}
	if obj := extractBraceSubstring(trimmed); obj != "" {
		if r, ok := tryParseJSONObject(obj); ok {
			return validateParsed(r, raw)
		}
	}

	// Layer 3: text pattern.
	if r, ok := tryParseTextPattern(trimmed); ok {
		return validateParsed(r, raw)
	}

	return ParsedJudgeResult{}, &JudgeParseError{
		Raw:     raw,
		Message: fmt.Sprintf("could not extract a valid {reasoning, score} from judge response: %q", truncate(trimmed, 200)),
	}
}

type rawParsed struct {
	reasoning string
	score     any // whatever JSON or text yielded; validated centrally
	hasScore  bool
}

func tryParseJSONObject(s string) (rawParsed, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return rawParsed{}, false
	}
	var r rawParsed
	for _, k := range jsonFieldAliases.score {
		if v, ok := obj[k]; ok {
			r.score, r.hasScore = v, true
			break
		}
	}
	for _, k := range jsonFieldAliases.reasoning {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				r.reasoning = s
				break
			}
		}
	}
	if !r.hasScore {
		return rawParsed{}, false
	}
	return r, true
}

func extractFencedJSON(s string) string {
	m := fencedJSONPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func extractBraceSubstring(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func tryParseTextPattern(s string) (rawParsed, bool) {
	scoreMatch := textScorePattern.FindStringSubmatch(s)
	if scoreMatch == nil {
		return rawParsed{}, false
	}

	var reasoning string
	if rm := textReasoningPattern.FindStringSubmatch(s); len(rm) > 2 {
		reasoning = strings.TrimSpace(rm[2])
	} else {
		idx := textScorePattern.FindStringIndex(s)
		if idx != nil {
			reasoning = strings.TrimSpace(s[:idx[0]])
		}
	}
	if reasoning == "" {
		return rawParsed{}, false
	}

	return rawParsed{reasoning: reasoning, score: scoreMatch[1], hasScore: true}, true
}

func validateParsed(r rawParsed, raw string) (ParsedJudgeResult, error) {
	score, ok := asJudgeScore(r.score)
	if !ok {
		return ParsedJudgeResult{}, &JudgeParseError{Raw: raw, Message: fmt.Sprintf("score %v is not an integer in [1,4]", r.score)}
	}
	reasoning := strings.TrimSpace(r.reasoning)
	if reasoning == "" {
		return ParsedJudgeResult{}, &JudgeParseError{Raw: raw, Message: "reasoning is empty"}
	}
	return ParsedJudgeResult{Reasoning: truncate(reasoning, maxReasoningLen), Score: score}, nil
}

func asJudgeScore(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, ok := parseIntStrict(n)
		if !ok {
			return 0, false
		}
		f = float64(parsed)
	default:
		return 0, false
	}
	if f != float64(int(f)) {
		return 0, false
	}
	i := int(f)
	if i < 1 || i > 4 {
		return 0, false
	}
	return i, true
}

func parseIntStrict(s string) (int, bool) {
	s = strings.TrimSpace(s)
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
