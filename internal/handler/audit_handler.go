package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/service"
)

type AuditHandler struct {
	audit  *service.AuditService
	logger *zap.Logger
}

func NewAuditHandler(audit *service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

// Latest handles GET /audit?limit=100
func (h *AuditHandler) Latest(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	entries, err := h.audit.Latest(c.Request.Context(), sess, intQuery(c, "limit", 100))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
