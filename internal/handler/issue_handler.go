package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type IssueHandler struct {
	issues *service.IssueService
	logger *zap.Logger
}

func NewIssueHandler(issues *service.IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, logger: logger}
}

// List handles GET /issues?q=&sort=&order=
func (h *IssueHandler) List(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, h.issues.List(c.Request.Context(), sess, listParams(c)))
}

// EmployeeCreated handles GET /issues/employee-created
func (h *IssueHandler) EmployeeCreated(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, h.issues.EmployeeCreated(c.Request.Context(), sess, listParams(c)))
}

// Get handles GET /issues/:key
func (h *IssueHandler) Get(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	issue, err := h.issues.Get(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Create handles POST /issues
func (h *IssueHandler) Create(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Issue
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	issue, err := h.issues.Create(c.Request.Context(), sess, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// Update handles PUT /issues/:key
func (h *IssueHandler) Update(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Issue
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	issue, err := h.issues.Update(c.Request.Context(), sess, c.Param("key"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}
