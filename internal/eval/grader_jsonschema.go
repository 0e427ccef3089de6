package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema passes when output.text parses as JSON and validates against schema.
// Reasons distinguish "empty", "not JSON", and "schema violation" per the data model.
func JSONSchema(schema map[string]any) Grader {
	name := "jsonSchema"
	schemaLoader := gojsonschema.NewGoLoader(schema)
	return newGrader(name, func(_ context.Context, output TargetOutput, _ *CaseExpected, _ *Context) (GradeResult, error) {
		text := strings.TrimSpace(textOf(output))
		if text == "" {
			return gradeFail(name, "output is empty", 0)
		}

		var doc any
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return gradeFail(name, fmt.Sprintf("output is not valid JSON: %v", err), 0)
		}

		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
		if err != nil {
			return gradeFail(name, fmt.Sprintf("schema evaluation error: %v", err), 0)
		}
		if result.Valid() {
			return gradePass(name, "output validates against schema", 1)
		}

		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return gradeFail(name, fmt.Sprintf("schema violation: %s", strings.Join(msgs, "; ")), 0)
	})
}
