package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/service"
	"sprint-tracker/pkg/logger"
	"sprint-tracker/pkg/rbac"
	"sprint-tracker/pkg/store"
)

// StatusOf maps a service error onto an HTTP status.
func StatusOf(err error) int {
	var verr *service.ValidationError
	var denied *rbac.PermissionDeniedError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.As(err, &denied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, store.ErrRemote),
		errors.Is(err, store.ErrRejected),
		errors.Is(err, store.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := StatusOf(err)
	body := gin.H{"error": err.Error()}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body["missing"] = verr.Missing
	case status == http.StatusBadGateway:
		body["error"] = "document store unavailable"
	case status == http.StatusInternalServerError:
		body["error"] = "internal error"
	}

	if status >= http.StatusInternalServerError {
		logger.WithTrace(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
}
