package eval

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// configHashInput is the documented, intentionally-narrow basis for
// configHash: suite structure only, not target identity. A future revision
// may extend this to hash target/model identity (§9 design notes).
type configHashInput struct {
	Name      string       `json:"name"`
	CaseCount int          `json:"caseCount"`
	CaseIDs   []string     `json:"caseIds"`
	Gates     *GateConfig  `json:"gates"`
}

// ComputeConfigHash returns the 16-hex-char truncated SHA-256 digest over
// {name, caseCount, caseIds, gates} serialized as JSON.
func ComputeConfigHash(suiteName string, caseIDs []string, gates *GateConfig) string {
	input := configHashInput{
		Name:      suiteName,
		CaseCount: len(caseIDs),
		CaseIDs:   caseIDs,
		Gates:     gates,
	}
	data, _ := json.Marshal(input)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
