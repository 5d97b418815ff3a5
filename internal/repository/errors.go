// Package repository implements MySQL persistence for users, tenants and
// refresh sessions. Repositories are thin structs over an explicitly
// constructed *sql.DB handle; nothing here is global. Soft delete is enforced
// at this boundary: every read filters out tombstoned rows.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no live row. Handlers decide
// whether this becomes a 404 (CRUD endpoints) or a generic 400 (the refresh
// path, which must not leak session existence).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert or update violates the unique
// email constraint.
var ErrEmailExists = errors.New("email already exists")

// ErrTenantExists is returned when a tenant insert or update violates the
// composite (name, address) unique constraint.
var ErrTenantExists = errors.New("tenant already exists")
