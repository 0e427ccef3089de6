package eval

import "fmt"

// EvaluateGates implements §4.7: each configured gate is checked against the
// run summary; overall pass is the conjunction. A nil config passes vacuously.
func EvaluateGates(summary RunSummary, cfg *GateConfig) GateResult {
	if cfg == nil {
		return GateResult{Pass: true, Checks: nil}
	}

	var checks []GateCheck
	overall := true

	if cfg.PassRate != nil {
		c := GateCheck{
			Name:      "passRate",
			Actual:    summary.PassRate,
			Threshold: *cfg.PassRate,
			Pass:      summary.PassRate >= *cfg.PassRate,
		}
		c.Reason = fmt.Sprintf("passRate %.4f %s threshold %.4f", c.Actual, cmpWord(c.Pass, ">="), c.Threshold)
		checks = append(checks, c)
		overall = overall && c.Pass
	}

	if cfg.MaxCost != nil {
		c := GateCheck{
			Name:      "maxCost",
			Actual:    summary.TotalCost,
			Threshold: *cfg.MaxCost,
			Pass:      summary.TotalCost <= *cfg.MaxCost,
		}
		c.Reason = fmt.Sprintf("totalCost %.4f %s threshold %.4f", c.Actual, cmpWord(c.Pass, "<="), c.Threshold)
		checks = append(checks, c)
		overall = overall && c.Pass
	}

	if cfg.P95LatencyMs != nil {
		c := GateCheck{
			Name:      "p95LatencyMs",
			Actual:    float64(summary.P95LatencyMs),
			Threshold: *cfg.P95LatencyMs,
			Pass:      float64(summary.P95LatencyMs) <= *cfg.P95LatencyMs,
		}
		c.Reason = fmt.Sprintf("p95LatencyMs %.0f %s threshold %.0f", c.Actual, cmpWord(c.Pass, "<="), c.Threshold)
		checks = append(checks, c)
		overall = overall && c.Pass
	}

	return GateResult{Pass: overall, Checks: checks}
}

func cmpWord(pass bool, op string) string {
	if pass {
		return "satisfies " + op
	}
	return "violates " + op
}
