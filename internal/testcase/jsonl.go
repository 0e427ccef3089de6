package testcase

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadJSONLCases implements the §6 JSONL loader: one case per line, blank
// lines and lines starting with "//" or "#" are skipped, a leading UTF-8 BOM
// on the first line is tolerated, parse errors are reported with their line
// number, and duplicate ids within the file are rejected.
func LoadJSONLCases(path string) ([]eval.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testcase: read %q: %w", path, err)
	}
	defer f.Close()

	var cases []eval.Case
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if lineNo == 1 {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		var c eval.Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("testcase: %s:%d: %w", path, lineNo, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("testcase: %s:%d: %w", path, lineNo, err)
		}
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("testcase: %s:%d: duplicate case id %q", path, lineNo, c.ID)
		}
		seen[c.ID] = struct{}{}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("testcase: read %q: %w", path, err)
	}

	return cases, nil
}
