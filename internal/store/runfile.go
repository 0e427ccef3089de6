package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

// RunArtifactStore persists eval.Run artifacts as byte-exact, round-trippable
// JSON files on disk, one file per run, named by the run's uuid. It is the
// source of truth for a run's full trial-level detail: Load reads a run back
// through eval.ParseRun, so a persisted run is always re-validated against
// the same schema it was written with. List reads only file names and
// modification times.
type RunArtifactStore struct {
	dir string
}

// NewRunArtifactStore creates a RunArtifactStore rooted at dir, creating it
// if necessary.
func NewRunArtifactStore(dir string) (*RunArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create run artifact dir %q: %w", dir, err)
	}
	return &RunArtifactStore{dir: dir}, nil
}

// NewRunID returns a fresh UUID for use as eval.Run.ID; pass as
// eval.RunOptions.NewID.
func NewRunID() string {
	return uuid.NewString()
}

func (s *RunArtifactStore) pathFor(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes run to disk, overwriting any existing artifact with the same id.
func (s *RunArtifactStore) Save(run eval.Run) error {
	data, err := eval.SerializeRun(run)
	if err != nil {
		return fmt.Errorf("store: serialize run %q: %w", run.ID, err)
	}
	if err := os.WriteFile(s.pathFor(run.ID), data, 0o644); err != nil {
		return fmt.Errorf("store: write run %q: %w", run.ID, err)
	}
	return nil
}

// Load reads and strictly validates a persisted run by id.
func (s *RunArtifactStore) Load(id string) (eval.Run, error) {
	data, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		return eval.Run{}, fmt.Errorf("store: read run %q: %w", id, err)
	}
	return eval.ParseRun(data)
}

// List returns run ids present in the store, most recently written first.
func (s *RunArtifactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list run artifact dir %q: %w", s.dir, err)
	}

	type namedEntry struct {
		id      string
		modTime int64
	}
	var named []namedEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		named = append(named, namedEntry{id: strings.TrimSuffix(e.Name(), ".json"), modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(named, func(i, j int) bool { return named[i].modTime > named[j].modTime })

	ids := make([]string, len(named))
	for i, n := range named {
		ids[i] = n.id
	}
	return ids, nil
}
