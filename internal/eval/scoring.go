package eval

import "fmt"

// CaseResult is the per-case verdict produced by scoring a list of grades
// against their GraderConfigs.
type CaseResult struct {
	Pass          bool
	Score         float64
	Reason        string
	FailedGraders []string
}

const defaultCaseThreshold = 0.5

// Score implements §4.2: required-grader short-circuit, then weighted average
// against the per-case threshold (minimum of configured thresholds, default 0.5).
func Score(grades []GradeResult, configs []GraderConfig) CaseResult {
	var failedRequired []string
	var failedGraders []string
	for i, g := range grades {
		if !g.Pass {
			failedGraders = append(failedGraders, g.GraderName)
			if i < len(configs) && configs[i].Required {
				failedRequired = append(failedRequired, g.GraderName)
			}
		}
	}

	if len(failedRequired) > 0 {
		return CaseResult{
			Pass:          false,
			Score:         0,
			Reason:        fmt.Sprintf("required grader failed: %s", failedRequired[0]),
			FailedGraders: failedGraders,
		}
	}

	var weightedSum, totalWeight float64
	var threshold *float64
	for i, g := range grades {
		weight := 1.0
		var cfgThreshold *float64
		if i < len(configs) {
			if configs[i].Weight > 0 {
				weight = configs[i].Weight
			}
			cfgThreshold = configs[i].Threshold
		}
		weightedSum += g.Score * weight
		totalWeight += weight
		if cfgThreshold != nil && (threshold == nil || *cfgThreshold < *threshold) {
			threshold = cfgThreshold
		}
	}

	score := 1.0
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}

	caseThreshold := defaultCaseThreshold
	if threshold != nil {
		caseThreshold = *threshold
	}

	pass := score >= caseThreshold
	reason := "all graders satisfied threshold"
	if !pass {
		reason = fmt.Sprintf("score %.4f below threshold %.4f", score, caseThreshold)
	}

	return CaseResult{
		Pass:          pass,
		Score:         score,
		Reason:        reason,
		FailedGraders: failedGraders,
	}
}
