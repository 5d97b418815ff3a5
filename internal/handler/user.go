package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/queue"
	"github.com/devsahoo/auth-service/internal/repository"
	"github.com/devsahoo/auth-service/internal/utils"
)

// UserHandler implements the admin-only user and manager CRUD endpoints. The
// same handler backs both route families; only the validation schemas differ
// (manager creation pins role=manager and requires a tenant).
type UserHandler struct {
	users      UserStore
	logger     *slog.Logger
	audit      AuditPublisher
	bcryptCost int
}

func NewUserHandler(users UserStore, logger *slog.Logger, audit AuditPublisher, bcryptCost int) *UserHandler {
	return &UserHandler{users: users, logger: logger, audit: audit, bcryptCost: bcryptCost}
}

type createUserReq struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	TenantID  *uint64 `json:"tenantId"`
}

type updateUserReq struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	TenantID  *uint64 `json:"tenantId"`
}

// Create inserts a user with an admin-chosen role and optional tenant.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}
	if !model.ValidRole(req.Role) {
		return httperr.BadRequest("unknown role")
	}
	h.logger.Debug("incoming user data for create", "email", req.Email, "role", req.Role)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return httperr.Internal(err)
	}
	id, err := h.users.Create(ctx, model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		TenantID:     req.TenantID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return httperr.Conflict("email already exists")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("user has been created", "id", id, "role", req.Role)
	return c.JSON(http.StatusCreated, idResp{ID: id})
}

// List returns live users, optionally filtered by the role query parameter.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.users.List(ctx, c.QueryParam("role"))
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// ListManagers returns live users with the manager role, regardless of any
// query input.
func (h *UserHandler) ListManagers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.users.List(ctx, model.RoleManager)
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one live user without the password hash.
func (h *UserHandler) GetByID(c echo.Context) error {
	id := paramID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateByID rewrites a user's profile fields.
func (h *UserHandler) UpdateByID(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if !model.ValidRole(req.Role) {
		return httperr.BadRequest("unknown role")
	}
	id := paramID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.users.Update(ctx, id, req.FirstName, req.LastName, req.Email, req.Role, req.TenantID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httperr.NotFound("user not found")
		case errors.Is(err, repository.ErrEmailExists):
			return httperr.Conflict("email already exists")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("user has been updated", "id", id)
	return c.NoContent(http.StatusNoContent)
}

// DeleteByID soft-deletes a user. Their sessions stay in place and keep
// working until expiry or logout; only new lookups stop resolving the user.
func (h *UserHandler) DeleteByID(c echo.Context) error {
	id := paramID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("user has been deleted", "id", id)
	if h.audit != nil {
		ev := queue.AuthEvent{Action: queue.ActionUserDeleted, UserID: id, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), dbTimeout)
			defer pcancel()
			_ = h.audit.PublishAuthEvent(pctx, ev)
		}()
	}
	return c.NoContent(http.StatusNoContent)
}
