package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
)

type DJRequestRepository interface {
	Create(request *models.DJRequest) error
	GetByID(id int64) (*models.DJRequest, error)
	GetSummaryByID(id int64) (*models.DJRequestSummary, error)
	GetDetail(id int64) (*models.DJRequestDetail, error)
	HasPending(userID int64) (bool, error)
	List(filter models.DJRequestFilter) ([]*models.DJRequestSummary, int, error)
	Reject(id int64, processedAt, adminID int64) error
	Approve(id int64, ownerID int64, processedAt, adminID int64) error
}

type djRequestRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDJRequestRepository(db *sqlx.DB, logger *zap.Logger) DJRequestRepository {
	return &djRequestRepository{db: db, logger: logger}
}

func (r *djRequestRepository) Create(request *models.DJRequest) error {
	query := `INSERT INTO dj_requests (user_id, status, created_at) VALUES (?, ?, ?) RETURNING id`
	err := r.db.QueryRow(query, request.UserID, request.Status, request.CreatedAt).Scan(&request.ID)
	if err != nil {
		r.logger.Error("Failed to create DJ request", zap.Error(err))
		return err
	}
	return nil
}

func (r *djRequestRepository) GetByID(id int64) (*models.DJRequest, error) {
	var request models.DJRequest
	query := `SELECT id, user_id, status, created_at, processed_at, admin_id FROM dj_requests WHERE id = ?`
	err := r.db.Get(&request, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get DJ request by ID", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &request, nil
}

func (r *djRequestRepository) GetSummaryByID(id int64) (*models.DJRequestSummary, error) {
	var summary models.DJRequestSummary
	query := `
		SELECT r.id, r.user_id, r.status, r.created_at, r.processed_at, r.admin_id, u.email, u.display_name
		FROM dj_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = ?
	`
	err := r.db.Get(&summary, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get DJ request summary", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &summary, nil
}

// GetDetail uses an outer join so a request with a missing owner row is still
// returned, with null owner fields.
func (r *djRequestRepository) GetDetail(id int64) (*models.DJRequestDetail, error) {
	var detail models.DJRequestDetail
	query := `
		SELECT r.id, r.user_id, r.status, r.created_at, r.processed_at, r.admin_id,
		       u.email, u.display_name, u.avatar_url, u.bio
		FROM dj_requests r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.id = ?
	`
	err := r.db.Get(&detail, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get DJ request detail", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &detail, nil
}

func (r *djRequestRepository) HasPending(userID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM dj_requests WHERE user_id = ? AND status = ?`
	err := r.db.Get(&count, query, userID, models.DJRequestPending)
	if err != nil {
		r.logger.Error("Failed to count pending DJ requests", zap.Int64("user_id", userID), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

func (r *djRequestRepository) List(filter models.DJRequestFilter) ([]*models.DJRequestSummary, int, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if filter.Status != "" && filter.Status != "all" {
		whereClauses = append(whereClauses, "r.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Query != "" {
		whereClauses = append(whereClauses, "(u.email LIKE ? OR u.display_name LIKE ?)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM dj_requests r JOIN users u ON u.id = r.user_id ` + whereSQL
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count DJ requests", zap.Error(err))
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	listQuery := `
		SELECT r.id, r.user_id, r.status, r.created_at, r.processed_at, r.admin_id, u.email, u.display_name
		FROM dj_requests r
		JOIN users u ON u.id = r.user_id
		` + whereSQL + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`
	listArgs := append(args, filter.PageSize, offset)

	rows := []*models.DJRequestSummary{}
	if err := r.db.Select(&rows, listQuery, listArgs...); err != nil {
		r.logger.Error("Failed to list DJ requests", zap.Error(err))
		return nil, 0, err
	}

	return rows, total, nil
}

// Reject marks a pending request rejected. Returns sql.ErrNoRows if the
// request is missing or no longer pending.
func (r *djRequestRepository) Reject(id int64, processedAt, adminID int64) error {
	result, err := r.db.Exec(
		`UPDATE dj_requests SET status = ?, processed_at = ?, admin_id = ? WHERE id = ? AND status = ?`,
		models.DJRequestRejected, processedAt, adminID, id, models.DJRequestPending,
	)
	if err != nil {
		r.logger.Error("Failed to reject DJ request", zap.Int64("id", id), zap.Error(err))
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Approve marks a pending request approved and grants the owner the DJ role
// in a single transaction, so the request can never read approved while the
// role grant was lost.
func (r *djRequestRepository) Approve(id int64, ownerID int64, processedAt, adminID int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE dj_requests SET status = ?, processed_at = ?, admin_id = ? WHERE id = ? AND status = ?`,
		models.DJRequestApproved, processedAt, adminID, id, models.DJRequestPending,
	)
	if err != nil {
		r.logger.Error("Failed to approve DJ request", zap.Int64("id", id), zap.Error(err))
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		models.RoleDJ, processedAt, ownerID,
	); err != nil {
		r.logger.Error("Failed to grant DJ role", zap.Int64("user_id", ownerID), zap.Error(err))
		return err
	}

	return tx.Commit()
}
