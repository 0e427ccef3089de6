package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runs, err := store.NewRunArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunArtifactStore: %v", err)
	}
	srv, err := NewServer(runs)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func sampleServerRun(id string) eval.Run {
	return eval.Run{
		SchemaVersion: eval.SchemaVersion,
		ID:            id,
		SuiteID:       "S1",
		Mode:          eval.ModeLive,
		Trials:        []eval.Trial{},
		Timestamp:     "2026-01-01T00:00:00Z",
		ConfigHash:    "abc123",
	}
}

func TestNewServerRejectsNilStore(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Fatalf("NewServer(nil): expected error")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleListRunsEmpty(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Runs []string `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body.Runs) != 0 {
		t.Fatalf("runs: got %d want 0", len(body.Runs))
	}
}

func TestHandleGetRunRoundTrips(t *testing.T) {
	srv := newTestServer(t)
	run := sampleServerRun("run-1")
	if err := srv.runs.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got eval.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != run.ID || got.SuiteID != run.SuiteID {
		t.Fatalf("got %+v want %+v", got, run)
	}
}

func TestHandleGetRunMissingReturns404(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleCompareRuns(t *testing.T) {
	srv := newTestServer(t)
	base := sampleServerRun("base")
	compare := sampleServerRun("compare")
	if err := srv.runs.Save(base); err != nil {
		t.Fatalf("Save base: %v", err)
	}
	if err := srv.runs.Save(compare); err != nil {
		t.Fatalf("Save compare: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/base/compare/compare", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}
