package models

// DJ request states. Pending is initial; approved and rejected are terminal.
const (
	DJRequestPending  = "pending"
	DJRequestApproved = "approved"
	DJRequestRejected = "rejected"
)

// DJRequest is a moderation-queue entry asking for the DJ role.
type DJRequest struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"userId"`
	Status      string `db:"status" json:"status"`
	CreatedAt   int64  `db:"created_at" json:"createdAt"`
	ProcessedAt *int64 `db:"processed_at" json:"processedAt"`
	AdminID     *int64 `db:"admin_id" json:"adminId"`
}

// DJRequestSummary is a request joined with its owner, as shown in the admin
// queue listing.
type DJRequestSummary struct {
	DJRequest
	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"displayName"`
}

// DJRequestDetail is the single-request admin view. Owner fields are pointers
// because the join is an outer join: a dangling owner still yields the
// request with null owner fields.
type DJRequestDetail struct {
	DJRequest
	Email       *string `db:"email" json:"email"`
	DisplayName *string `db:"display_name" json:"displayName"`
	AvatarURL   *string `db:"avatar_url" json:"avatarUrl"`
	Bio         *string `db:"bio" json:"bio"`
}

// DJRequestFilter narrows and pages the admin queue listing.
type DJRequestFilter struct {
	Page     int
	PageSize int
	Status   string // all, pending, approved or rejected
	Query    string // case-insensitive substring over owner email/display name
}

// ProcessRequestInput is the body of POST /api/admin/approve and /reject.
type ProcessRequestInput struct {
	RequestID int64 `json:"requestId" binding:"required"`
}
