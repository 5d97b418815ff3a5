package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devsahoo/auth-service/internal/model"
)

// SessionRepo persists refresh sessions: one row per outstanding refresh
// token. Unlike users and tenants, sessions are hard-deleted; the absence of
// the row is what revokes the token.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// CreateSession inserts a session row for userID expiring at expiresAt and
// returns it with its generated id.
func (r *SessionRepo) CreateSession(ctx context.Context, userID uint64, expiresAt time.Time) (model.Session, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_sessions (user_id, expires_at) VALUES (?,?)",
		userID, expiresAt)
	if err != nil {
		return model.Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{ID: uint64(id), UserID: userID, ExpiresAt: expiresAt}, nil
}

// GetSession fetches a session by (id, owner). Both must match: a refresh
// token presenting someone else's session id is treated as revoked.
func (r *SessionRepo) GetSession(ctx context.Context, id, userID uint64) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, created_at, updated_at FROM refresh_sessions WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, err
	}
	return s, nil
}

// DeleteSession removes a session row. Idempotent: deleting an id that no
// longer exists is not an error.
func (r *SessionRepo) DeleteSession(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_sessions WHERE id=?", id)
	return err
}
