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

type WalletHandler interface {
	Nonce(c *gin.Context)
	Link(c *gin.Context)
	Unlink(c *gin.Context)
}

type walletHandler struct {
	walletService service.WalletService
	logger        *zap.Logger
}

func NewWalletHandler(walletService service.WalletService, logger *zap.Logger) WalletHandler {
	return &walletHandler{walletService: walletService, logger: logger}
}

func (h *walletHandler) Nonce(c *gin.Context) {
	user := middleware.Account(c)

	nonce, err := h.walletService.IssueNonce(user)
	if err != nil {
		h.logger.Error("Failed to issue nonce", zap.Int64("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to create nonce"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (h *walletHandler) Link(c *gin.Context) {
	user := middleware.Account(c)

	var input models.LinkWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing fields"})
		return
	}

	link, err := h.walletService.VerifyAndLink(user, input.Nonce, input.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing fields"})
		case errors.Is(err, service.ErrInvalidNonce):
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_nonce", "error": "Invalid nonce"})
		case errors.Is(err, service.ErrNonceExpired):
			c.JSON(http.StatusBadRequest, gin.H{"code": "nonce_expired", "error": "Nonce expired"})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_signature", "error": "Invalid signature"})
		default:
			h.logger.Error("Failed to link wallet", zap.Int64("user_id", user.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to store link"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "address": link.Address, "linkedAt": link.LinkedAt})
}

func (h *walletHandler) Unlink(c *gin.Context) {
	user := middleware.Account(c)

	var input models.UnlinkWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing address"})
		return
	}

	err := h.walletService.Unlink(user, input.Address)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "Link not found"})
			return
		}
		h.logger.Error("Failed to unlink wallet", zap.Int64("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to unlink"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
