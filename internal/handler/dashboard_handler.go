package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprint-tracker/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get handles GET /dashboard?q=
func (h *DashboardHandler) Get(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, h.dashboard.Build(c.Request.Context(), sess, c.Query("q")))
}
