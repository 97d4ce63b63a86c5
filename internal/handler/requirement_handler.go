package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type RequirementHandler struct {
	requirements *service.RequirementService
	logger       *zap.Logger
}

func NewRequirementHandler(requirements *service.RequirementService, logger *zap.Logger) *RequirementHandler {
	return &RequirementHandler{requirements: requirements, logger: logger}
}

// List handles GET /requirements?q=&sort=&order=
func (h *RequirementHandler) List(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, h.requirements.List(c.Request.Context(), sess, listParams(c)))
}

// Get handles GET /requirements/:key
func (h *RequirementHandler) Get(c *gin.Context) {
	detail, err := h.requirements.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create handles POST /requirements
func (h *RequirementHandler) Create(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Requirement
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	q, err := h.requirements.Create(c.Request.Context(), sess, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Update handles PUT /requirements/:key
func (h *RequirementHandler) Update(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Requirement
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	q, err := h.requirements.Update(c.Request.Context(), sess, c.Param("key"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Delete handles DELETE /requirements/:key
func (h *RequirementHandler) Delete(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	if err := h.requirements.Delete(c.Request.Context(), sess, c.Param("key")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "key": c.Param("key")})
}

// AddComment handles POST /requirements/:key/comments
func (h *RequirementHandler) AddComment(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	entry, err := h.requirements.AddComment(c.Request.Context(), sess, c.Param("key"), req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
