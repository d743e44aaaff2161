package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blocktek-radio/internal/middleware"
	"blocktek-radio/internal/models"
	"blocktek-radio/internal/service"
)

type ProfileHandler interface {
	Me(c *gin.Context)
	UpdateMe(c *gin.Context)
}

type profileHandler struct {
	authService   service.AuthService
	walletService service.WalletService
	logger        *zap.Logger
}

func NewProfileHandler(authService service.AuthService, walletService service.WalletService, logger *zap.Logger) ProfileHandler {
	return &profileHandler{authService: authService, walletService: walletService, logger: logger}
}

func (h *profileHandler) Me(c *gin.Context) {
	user := middleware.Account(c)

	links, err := h.walletService.ListLinks(user)
	if err != nil {
		h.logger.Error("Failed to load wallet links", zap.Int64("user_id", user.ID), zap.Error(err))
		links = []*models.WalletLink{}
	}

	c.JSON(http.StatusOK, gin.H{"profile": user, "wallet_links": links})
}

func (h *profileHandler) UpdateMe(c *gin.Context) {
	user := middleware.Account(c)

	var input models.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Invalid body"})
		return
	}

	updated, err := h.authService.UpdateProfile(user, input)
	if err != nil {
		h.logger.Error("Failed to update profile", zap.Int64("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": updated})
}
