// Package api exposes a minimal, read-only HTTP reporting surface over
// persisted run artifacts: list runs, fetch one run, and diff two runs.
// It never triggers a run — eval.RunSuite stays a CLI/library operation.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

// Server wraps a gin engine reading from a RunArtifactStore.
type Server struct {
	router *gin.Engine
	runs   *store.RunArtifactStore
}

// NewServer builds the reporting server over runs.
func NewServer(runs *store.RunArtifactStore) (*Server, error) {
	if runs == nil {
		return nil, errors.New("api: nil run artifact store")
	}
	r := gin.New()
	s := &Server{router: r, runs: runs}
	s.registerMiddleware()
	s.registerRoutes()
	return s, nil
}

// Run starts the HTTP listener at addr, defaulting to :8080.
func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
