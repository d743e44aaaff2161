package models

// Account roles. Promotion to RoleDJ happens only through an approved DJ
// request; there is no demotion path.
const (
	RoleListener = "listener"
	RoleDJ       = "dj"
	RoleAdmin    = "admin"
)

// User is an account row. Timestamps are milliseconds since the Unix epoch.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	DisplayName  string `db:"display_name" json:"displayName"`
	AvatarURL    string `db:"avatar_url" json:"avatarUrl"`
	Bio          string `db:"bio" json:"bio"`
	Role         string `db:"role" json:"role"`
	CreatedAt    int64  `db:"created_at" json:"createdAt"`
	UpdatedAt    int64  `db:"updated_at" json:"updatedAt"`
}

// Session is an opaque cookie-delivered bearer token. Expired rows are
// treated as absent on lookup, not purged.
type Session struct {
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	ExpiresAt int64  `db:"expires_at"`
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput is the body of PATCH /api/me. Empty fields keep the
// current values.
type UpdateProfileInput struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}
