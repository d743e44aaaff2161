package models

// WalletLink is a verified wallet-to-account association. The address is
// stored lowercase. Rows are only created by a successful signature
// verification and only removed by an explicit unlink.
type WalletLink struct {
	ID       int64  `db:"id" json:"id"`
	UserID   int64  `db:"user_id" json:"userId"`
	Address  string `db:"address" json:"address"`
	Verified bool   `db:"verified" json:"verified"`
	LinkedAt int64  `db:"linked_at" json:"linkedAt"`
}

// WalletNonce is a single-use challenge token. It is valid for exactly one
// successful verification and short-lived (minutes).
type WalletNonce struct {
	Nonce     string `db:"nonce"`
	UserID    int64  `db:"user_id"`
	ExpiresAt int64  `db:"expires_at"`
}

// LinkWalletInput is the body of POST /api/wallet/link.
type LinkWalletInput struct {
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// UnlinkWalletInput is the body of POST /api/wallet/unlink.
type UnlinkWalletInput struct {
	Address string `json:"address" binding:"required"`
}
