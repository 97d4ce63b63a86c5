package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type EmployeeHandler struct {
	employees *service.EmployeeService
	logger    *zap.Logger
}

func NewEmployeeHandler(employees *service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, logger: logger}
}

// List handles GET /employees?q=&sort=&order=
func (h *EmployeeHandler) List(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	view, err := h.employees.List(c.Request.Context(), sess, listParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ByDepartment handles GET /employees/by-department?department=
func (h *EmployeeHandler) ByDepartment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": h.employees.ByDepartment(c.Request.Context(), c.Query("department")),
	})
}

// Get handles GET /employees/:key
func (h *EmployeeHandler) Get(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	emp, err := h.employees.Get(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// Create handles POST /employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Employee
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	emp, err := h.employees.Create(c.Request.Context(), sess, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, emp)
}

// Update handles PUT /employees/:key
func (h *EmployeeHandler) Update(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var form model.Employee
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	emp, err := h.employees.Update(c.Request.Context(), sess, c.Param("key"), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// Delete handles DELETE /employees/:key
func (h *EmployeeHandler) Delete(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	if err := h.employees.Delete(c.Request.Context(), sess, c.Param("key")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "key": c.Param("key")})
}
