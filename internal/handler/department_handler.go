package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type DepartmentHandler struct {
	departments  *service.DepartmentService
	applications *service.ApplicationService
	logger       *zap.Logger
}

func NewDepartmentHandler(departments *service.DepartmentService, applications *service.ApplicationService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, applications: applications, logger: logger}
}

// List handles GET /departments
func (h *DepartmentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.departments.List(c.Request.Context()))
}

// Applications handles GET /applications
func (h *DepartmentHandler) Applications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"names": h.applications.Names(c.Request.Context())})
}

// Create handles POST /departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Department
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	dept, err := h.departments.Create(c.Request.Context(), sess, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// Update handles PUT /departments/:key
func (h *DepartmentHandler) Update(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Department
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	dept, err := h.departments.Update(c.Request.Context(), sess, c.Param("key"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}
