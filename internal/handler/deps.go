// Package handler implements the HTTP endpoints. Handlers receive their
// collaborators (stores, token issuer, logger, metrics, audit publisher)
// through constructors so tests can substitute fakes; nothing is global.
package handler

import (
	"context"

	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/queue"
)

// UserStore is the user persistence contract. *repository.UserRepo satisfies
// it.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, role string) ([]model.User, error)
	Update(ctx context.Context, id uint64, firstName, lastName, email, role string, tenantID *uint64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// TenantStore is the tenant persistence contract. *repository.TenantRepo
// satisfies it.
type TenantStore interface {
	Create(ctx context.Context, name, address string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Update(ctx context.Context, id uint64, name, address string) error
	SoftDelete(ctx context.Context, id uint64) error
}

// AuditPublisher forwards audit events to the message broker. Publishing is
// best-effort: handlers log failures and carry on.
type AuditPublisher interface {
	PublishAuthEvent(ctx context.Context, ev queue.AuthEvent) error
}
