package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blocktek-radio/internal/middleware"
	"blocktek-radio/internal/models"
	"blocktek-radio/internal/service"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, logger: logger}
}

func (h *authHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing fields"})
		return
	}

	_, session, err := h.authService.Register(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"code": "email_taken", "error": "Email already registered"})
			return
		}
		h.logger.Error("Failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Server error"})
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *authHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing fields"})
		return
	}

	_, session, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_credentials", "error": "Invalid credentials"})
			return
		}
		h.logger.Error("Failed to login user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Server error"})
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *authHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	if err := h.authService.Logout(token); err != nil {
		h.logger.Error("Failed to logout", zap.Error(err))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *authHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.authService.SessionTTL().Seconds()), "/", "", false, true)
}
