package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"blocktek-radio/internal/models"
	"blocktek-radio/internal/repository"
)

var (
	ErrForbidden        = errors.New("insufficient role")
	ErrRequestNotFound  = errors.New("request not found")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrDuplicateRequest = errors.New("a pending request already exists")
)

// Notifier receives best-effort notifications about newly filed requests.
// Implementations must never block the filing call on delivery.
type Notifier interface {
	DJRequestFiled(account *models.User, requestID int64)
}

type DJRequestService interface {
	FileRequest(caller *models.User) (int64, error)
	ListRequests(caller *models.User, filter models.DJRequestFilter) ([]*models.DJRequestSummary, int, error)
	GetRequestDetail(caller *models.User, requestID int64) (*models.DJRequestDetail, error)
	Approve(caller *models.User, requestID int64) (*models.DJRequestSummary, error)
	Reject(caller *models.User, requestID int64) (*models.DJRequestSummary, error)
}

type djRequestService struct {
	repo          repository.DJRequestRepository
	logger        *zap.Logger
	notifier      Notifier
	singlePending bool
}

func NewDJRequestService(repo repository.DJRequestRepository, notifier Notifier, singlePending bool, logger *zap.Logger) DJRequestService {
	return &djRequestService{
		repo:          repo,
		logger:        logger,
		notifier:      notifier,
		singlePending: singlePending,
	}
}

func (s *djRequestService) FileRequest(caller *models.User) (int64, error) {
	if s.singlePending {
		pending, err := s.repo.HasPending(caller.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending {
			return 0, ErrDuplicateRequest
		}
	}

	request := &models.DJRequest{
		UserID:    caller.ID,
		Status:    models.DJRequestPending,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.repo.Create(request); err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("DJ request filed", zap.Int64("request_id", request.ID), zap.Int64("user_id", caller.ID))
	if s.notifier != nil {
		s.notifier.DJRequestFiled(caller, request.ID)
	}
	return request.ID, nil
}

func (s *djRequestService) ListRequests(caller *models.User, filter models.DJRequestFilter) ([]*models.DJRequestSummary, int, error) {
	if caller.Role != models.RoleAdmin {
		return nil, 0, ErrForbidden
	}
	return s.repo.List(normalizeFilter(filter))
}

func (s *djRequestService) GetRequestDetail(caller *models.User, requestID int64) (*models.DJRequestDetail, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	detail, err := s.repo.GetDetail(requestID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrRequestNotFound
	}
	return detail, nil
}

func (s *djRequestService) Approve(caller *models.User, requestID int64) (*models.DJRequestSummary, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	request, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != models.DJRequestPending {
		return nil, ErrAlreadyProcessed
	}

	now := time.Now().UnixMilli()
	err = s.repo.Approve(requestID, request.UserID, now, caller.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with another moderator.
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}

	s.logger.Info("DJ request approved",
		zap.Int64("request_id", requestID),
		zap.Int64("user_id", request.UserID),
		zap.Int64("admin_id", caller.ID),
	)
	return s.repo.GetSummaryByID(requestID)
}

// Reject never touches the owner's role.
func (s *djRequestService) Reject(caller *models.User, requestID int64) (*models.DJRequestSummary, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	request, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != models.DJRequestPending {
		return nil, ErrAlreadyProcessed
	}

	now := time.Now().UnixMilli()
	err = s.repo.Reject(requestID, now, caller.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	s.logger.Info("DJ request rejected",
		zap.Int64("request_id", requestID),
		zap.Int64("admin_id", caller.ID),
	)
	return s.repo.GetSummaryByID(requestID)
}

func normalizeFilter(filter models.DJRequestFilter) models.DJRequestFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Status == "" {
		filter.Status = "all"
	}
	return filter
}
