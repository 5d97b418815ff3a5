package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/repository"
)

// TenantHandler implements the admin-only tenant CRUD endpoints.
type TenantHandler struct {
	tenants TenantStore
	logger  *slog.Logger
}

func NewTenantHandler(tenants TenantStore, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, logger: logger}
}

type tenantReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type tenantResp struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func toTenantResp(t model.Tenant) tenantResp {
	return tenantResp{ID: t.ID, Name: t.Name, Address: t.Address}
}

// Create inserts a tenant. Duplicate (name, address) pairs are rejected
// without creating a row.
func (h *TenantHandler) Create(c echo.Context) error {
	var req tenantReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	h.logger.Debug("request for creating a tenant", "name", req.Name)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.tenants.Create(ctx, req.Name, req.Address)
	if err != nil {
		if errors.Is(err, repository.ErrTenantExists) {
			return httperr.Conflict("tenant already exists")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("tenant has been created", "id", id)
	return c.JSON(http.StatusCreated, idResp{ID: id})
}

// List returns all live tenants.
func (h *TenantHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tenants, err := h.tenants.List(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]tenantResp, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one live tenant.
func (h *TenantHandler) GetByID(c echo.Context) error {
	id := paramID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("tenant not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, toTenantResp(t))
}

// UpdateByID rewrites a tenant's name and address.
func (h *TenantHandler) UpdateByID(c echo.Context) error {
	var req tenantReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	id := paramID(c)
	h.logger.Debug("request to update a tenant", "id", id)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.tenants.Update(ctx, id, req.Name, req.Address); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httperr.NotFound("tenant not found")
		case errors.Is(err, repository.ErrTenantExists):
			return httperr.Conflict("tenant already exists")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("tenant has been updated", "id", id)
	return c.NoContent(http.StatusNoContent)
}

// DeleteByID soft-deletes a tenant.
func (h *TenantHandler) DeleteByID(c echo.Context) error {
	id := paramID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.tenants.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("tenant not found")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("tenant has been deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

// paramID reads the :id path parameter. The params schema has already
// validated and coerced it, so parse failures cannot happen on validated
// routes.
func paramID(c echo.Context) uint64 {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return id
}
