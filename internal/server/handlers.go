package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/model"
	"github.com/kingrea/taskboard/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !s.bind(c, &req) {
		return
	}
	session, err := s.gate.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.logger.Warn("login rejected", zap.String("email", strings.TrimSpace(req.Email)))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	case err != nil:
		s.fail(c, err)
		return
	}
	maxAge := int(session.ExpiresAt.Sub(s.clock()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, session.Token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.repo.ListProjects(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.repo.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var in model.ProjectInput
	if !s.bind(c, &in) {
		return
	}
	project, err := s.repo.CreateProject(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("project created", zap.String("project", project.ID), zap.String("key", project.Key))
	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var patch model.ProjectPatch
	if !s.bind(c, &patch) {
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	project, err := s.repo.UpdateProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := s.repo.DeleteProject(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("project deleted", zap.String("project", id))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in model.TaskInput
	if !s.bind(c, &in) {
		return
	}
	task, err := s.repo.CreateTask(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("task created", zap.String("task", task.ID), zap.String("project", task.ProjectID))
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch model.TaskPatch
	if !s.bind(c, &patch) {
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	task, err := s.repo.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.repo.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// bind decodes the JSON body into dst, writing the error response itself when
// decoding fails.
func (s *Server) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	_ = c.Error(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload exceeds limit"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
	return false
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrNotConfigured):
		s.logger.Error("login attempted without configured credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login is not configured"})
	default:
		s.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
