package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// SignIn handles POST /signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		EmpID    string `json:"empid"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	token, sess, err := h.auth.SignIn(c.Request.Context(), req.EmpID, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "session": sess})
}

// SignUp handles POST /signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var form model.Employee
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}

	emp, err := h.auth.SignUp(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, emp)
}

// SignOut handles POST /signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), sess); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := CurrentSession(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, sess)
}
