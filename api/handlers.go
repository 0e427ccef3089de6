package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListRuns(c *gin.Context) {
	ids, err := s.runs.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": ids})
}

func (s *Server) handleGetRun(c *gin.Context) {
	run, err := s.loadRun(c, c.Param("id"))
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleCompareRuns(c *gin.Context) {
	base, err := s.loadRun(c, c.Param("id"))
	if err != nil {
		return
	}
	compareRun, err := s.loadRun(c, c.Param("otherId"))
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, eval.CompareRuns(base, compareRun, eval.CompareOptions{}))
}

func (s *Server) loadRun(c *gin.Context, id string) (eval.Run, error) {
	run, err := s.runs.Load(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return eval.Run{}, err
	}
	return run, nil
}
