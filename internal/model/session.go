package model

import "time"

// Session represents a row in the `refresh_sessions` table. Exactly one row
// exists per outstanding refresh token; the row id doubles as the token's jti
// claim. Rotation and logout hard-delete the row, which is what revokes the
// token: the signature stays valid until its own expiry, but the token is
// rejected the moment the row is gone.
type Session struct {
	ID        uint64    // refresh_sessions.id, used as the refresh token's jti
	UserID    uint64    // refresh_sessions.user_id (required FK)
	ExpiresAt time.Time // refresh_sessions.expires_at (one year, leap-aware)
	CreatedAt time.Time // refresh_sessions.created_at
	UpdatedAt time.Time // refresh_sessions.updated_at
}
