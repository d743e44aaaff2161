package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blocktek-radio/internal/middleware"
	"blocktek-radio/internal/models"
	"blocktek-radio/internal/service"
)

type AdminHandler interface {
	RequestDJ(c *gin.Context)
	ListRequests(c *gin.Context)
	GetRequest(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
}

type adminHandler struct {
	djService service.DJRequestService
	logger    *zap.Logger
}

func NewAdminHandler(djService service.DJRequestService, logger *zap.Logger) AdminHandler {
	return &adminHandler{djService: djService, logger: logger}
}

// RequestDJ files a DJ role request for any authenticated account.
func (h *adminHandler) RequestDJ(c *gin.Context) {
	user := middleware.Account(c)

	requestID, err := h.djService.FileRequest(user)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			c.JSON(http.StatusConflict, gin.H{"code": "duplicate_request", "error": "A pending request already exists"})
			return
		}
		h.logger.Error("Failed to file DJ request", zap.Int64("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to create request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "requestId": requestID})
}

func (h *adminHandler) ListRequests(c *gin.Context) {
	user := middleware.Account(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.DJRequestFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.DefaultQuery("status", "all"),
		Query:    c.Query("q"),
	}

	rows, total, err := h.djService.ListRequests(user, filter)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": "Forbidden"})
			return
		}
		h.logger.Error("Failed to list DJ requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to list requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": rows,
		"total":    total,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

func (h *adminHandler) GetRequest(c *gin.Context) {
	user := middleware.Account(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Invalid id"})
		return
	}

	detail, err := h.djService.GetRequestDetail(user, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": "Forbidden"})
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "Request not found"})
		default:
			h.logger.Error("Failed to load DJ request", zap.Int64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to load request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": detail})
}

func (h *adminHandler) Approve(c *gin.Context) {
	h.process(c, h.djService.Approve)
}

func (h *adminHandler) Reject(c *gin.Context) {
	h.process(c, h.djService.Reject)
}

func (h *adminHandler) process(c *gin.Context, op func(*models.User, int64) (*models.DJRequestSummary, error)) {
	user := middleware.Account(c)

	var input models.ProcessRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "Missing requestId"})
		return
	}

	request, err := op(user, input.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": "Forbidden"})
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "Request not found"})
		case errors.Is(err, service.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{"code": "already_processed", "error": "Request already processed"})
		default:
			h.logger.Error("Failed to process DJ request", zap.Int64("id", input.RequestID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Failed to update request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
