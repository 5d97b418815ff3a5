package model

import "time"

// Role values stored in users.role. Authorization is exact set membership:
// admin does not implicitly gain manager or customer permissions.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleManager || s == RoleCustomer
}

// User represents a row in the `users` table. The password is stored only as
// a bcrypt hash. DeletedAt carries the soft-delete tombstone: a nil value
// means the account is active, and every repository read path excludes rows
// with a tombstone unless explicitly requested.
//
// TenantID is optional; a user belongs to at most one tenant.
type User struct {
	ID           uint64     // users.id
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Email        string     // users.email (lower-cased, trimmed, unique)
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	TenantID     *uint64    // users.tenant_id (nullable FK)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
	DeletedAt    *time.Time // users.deleted_at (soft-delete tombstone)
}
