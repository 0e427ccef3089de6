package api

import (
	"os"
	"strings"
)

func (s *Server) registerRoutes() {
	if s == nil || s.router == nil {
		return
	}

	group := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("AI_EVAL_API_KEY"))
	if apiKey != "" {
		group.Use(apiKeyAuthMiddleware(apiKey))
	}

	group.GET("/health", s.handleHealth)
	group.GET("/runs", s.handleListRuns)
	group.GET("/runs/:id", s.handleGetRun)
	group.GET("/runs/:id/compare/:otherId", s.handleCompareRuns)
}
