package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/devsahoo/auth-service/internal/model"
)

// UserRepo persists users. Reads exclude soft-deleted rows.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, first_name, last_name, email, password_hash, role, tenant_id, created_at, updated_at"

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// NormalizeEmail lower-cases and trims an email so that uniqueness and lookup
// behave case- and whitespace-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user and returns its id. The plaintext password must have
// been hashed by the caller; this layer never sees it.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	var tenantID any
	if u.TenantID != nil {
		tenantID = *u.TenantID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, tenant_id) VALUES (?,?,?,?,?,?)",
		u.FirstName, u.LastName, NormalizeEmail(u.Email), u.PasswordHash, u.Role, tenantID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u        model.User
		tenantID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &tenantID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if tenantID.Valid {
		id := uint64(tenantID.Int64)
		u.TenantID = &id
	}
	return u, nil
}

// GetByEmail fetches a live user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1",
		NormalizeEmail(email)))
}

// GetByID fetches a live user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id))
}

// List returns live users, optionally filtered by role.
func (r *UserRepo) List(ctx context.Context, role string) ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL"
	args := []any{}
	if role != "" {
		query += " AND role=?"
		args = append(args, role)
	}
	query += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u        model.User
			tenantID sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.Role, &tenantID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if tenantID.Valid {
			id := uint64(tenantID.Int64)
			u.TenantID = &id
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable profile fields of a live user.
func (r *UserRepo) Update(ctx context.Context, id uint64, firstName, lastName, email, role string, tenantID *uint64) error {
	var tid any
	if tenantID != nil {
		tid = *tenantID
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=?, role=?, tenant_id=? WHERE id=? AND deleted_at IS NULL",
		firstName, lastName, NormalizeEmail(email), role, tid, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete sets the tombstone instead of removing the row.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
