package testcase

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

// LoadYAMLCases implements the §6 YAML case-source loader: the document's
// top-level node must be a sequence, each element using the same field
// names as eval.Case's JSON encoding (id, description, input, expected,
// category, tags). A non-sequence top level is rejected with an error
// naming the file, and duplicate ids within the file are rejected.
func LoadYAMLCases(path string) ([]eval.Case, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testcase: read %q: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("testcase: parse %q: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("testcase: %s: top-level YAML must be a sequence of cases", path)
	}

	cases := make([]eval.Case, 0, len(doc.Content))
	seen := make(map[string]struct{}, len(doc.Content))
	for i, item := range doc.Content {
		var raw map[string]any
		if err := item.Decode(&raw); err != nil {
			return nil, fmt.Errorf("testcase: %s: cases[%d]: %w", path, i, err)
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("testcase: %s: cases[%d]: %w", path, i, err)
		}
		var c eval.Case
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("testcase: %s: cases[%d]: %w", path, i, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("testcase: %s: cases[%d]: %w", path, i, err)
		}
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("testcase: %s: cases[%d]: duplicate case id %q", path, i, c.ID)
		}
		seen[c.ID] = struct{}{}
		cases = append(cases, c)
	}
	return cases, nil
}
