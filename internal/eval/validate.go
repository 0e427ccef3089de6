package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SerializeRun marshals a Run to its canonical JSON form.
func SerializeRun(r Run) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseRun strictly decodes a persisted Run artifact, rejecting unknown
// fields, and validates it against the schema version this package supports.
func ParseRun(data []byte) (Run, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var r Run
	if err := dec.Decode(&r); err != nil {
		return Run{}, fmt.Errorf("parse run: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Run{}, err
	}
	return r, nil
}

// Validate checks the Run-level invariants from §3: totalCases accounting,
// schema version, and structural consistency between trials and summary.
func (r Run) Validate() error {
	if r.SchemaVersion == "" {
		return fmt.Errorf("run: schemaVersion is required")
	}
	if r.SchemaVersion != SchemaVersion {
		return fmt.Errorf("run: unsupported schemaVersion %q", r.SchemaVersion)
	}
	s := r.Summary
	if s.TotalCases != s.Passed+s.Failed+s.Errors {
		return fmt.Errorf("run: totalCases (%d) != passed+failed+errors (%d)", s.TotalCases, s.Passed+s.Failed+s.Errors)
	}
	if len(r.Trials) != s.TotalCases {
		return fmt.Errorf("run: trials length (%d) != summary.totalCases (%d)", len(r.Trials), s.TotalCases)
	}
	for _, t := range r.Trials {
		if err := t.Output.Validate(); err != nil {
			return fmt.Errorf("trial %q: %w", t.CaseID, err)
		}
	}
	return nil
}
