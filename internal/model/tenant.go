package model

import "time"

// Tenant represents a row in the `tenants` table. The (name, address) pair is
// unique. Deletion is soft: DeletedAt is set and reads skip the row.
type Tenant struct {
	ID        uint64     // tenants.id
	Name      string     // tenants.name
	Address   string     // tenants.address
	CreatedAt time.Time  // tenants.created_at
	UpdatedAt time.Time  // tenants.updated_at
	DeletedAt *time.Time // tenants.deleted_at (soft-delete tombstone)
}
