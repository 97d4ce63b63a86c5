package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type SprintHandler struct {
	sprints *service.SprintService
	logger  *zap.Logger
}

func NewSprintHandler(sprints *service.SprintService, logger *zap.Logger) *SprintHandler {
	return &SprintHandler{sprints: sprints, logger: logger}
}

// List handles GET /sprints?q=&sort=&order=
func (h *SprintHandler) List(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, h.sprints.List(c.Request.Context(), sess, listParams(c)))
}

// Get handles GET /sprints/:key
func (h *SprintHandler) Get(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	sprint, err := h.sprints.Get(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

// Create handles POST /sprints
func (h *SprintHandler) Create(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Sprint
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	sprint, err := h.sprints.Create(c.Request.Context(), sess, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

// Update handles PUT /sprints/:key
func (h *SprintHandler) Update(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Sprint
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	sprint, err := h.sprints.Update(c.Request.Context(), sess, c.Param("key"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}
