package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devsahoo/auth-service/internal/model"
)

// TenantRepo persists tenants. Reads exclude soft-deleted rows.
type TenantRepo struct{ DB *sql.DB }

func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

const tenantColumns = "id, name, address, created_at, updated_at"

// Create inserts a tenant and returns its id. The (name, address) pair is
// unique.
func (r *TenantRepo) Create(ctx context.Context, name, address string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tenants (name, address) VALUES (?,?)", name, address)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrTenantExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a live tenant by id.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (model.Tenant, error) {
	var t model.Tenant
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id=? AND deleted_at IS NULL LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tenant{}, ErrNotFound
		}
		return model.Tenant{}, err
	}
	return t, nil
}

// List returns all live tenants.
func (r *TenantRepo) List(ctx context.Context) ([]model.Tenant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Update rewrites name and address of a live tenant.
func (r *TenantRepo) Update(ctx context.Context, id uint64, name, address string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tenants SET name=?, address=? WHERE id=? AND deleted_at IS NULL",
		name, address, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrTenantExists
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
func (r *TenantRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tenants SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL", id)
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
