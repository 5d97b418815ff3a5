// Package router wires HTTP routes to their handlers and middleware chains.
// Every validated route follows the same ordering: sanitize, reject unknown
// fields, validate, authenticate, authorize, handler.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/devsahoo/auth-service/internal/handler"
	"github.com/devsahoo/auth-service/internal/metrics"
	mw "github.com/devsahoo/auth-service/internal/middleware"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/token"
)

// RegisterRoutes registers the unauthenticated infrastructure routes: the
// welcome page, the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, reg *prometheus.Registry) {
	e.GET("/", handler.Welcome)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))
}

// RegisterAuth registers the authentication routes under /api/v1/web/auth.
// Register and login carry the rate limiter; self requires a valid access
// token; refresh requires a valid refresh token; logout requires both.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v *token.Verifier, m *metrics.Collector, limit echo.MiddlewareFunc) {
	g := e.Group("/api/v1/web/auth")

	// The limiter runs first so malformed brute-force traffic is counted
	// before any body parsing or validation happens.
	g.POST("/register", a.Register,
		limit,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: []string{"firstName", "lastName", "email", "password", "role"}}),
		mw.ValidateBody(registerSchema),
	)
	g.POST("/login", a.Login,
		limit,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: []string{"email", "password"}}),
		mw.ValidateBody(loginSchema),
	)
	g.GET("/self", a.Self, mw.Authenticate(v))
	g.POST("/refresh", a.Refresh, mw.ValidateRefresh(v, m))
	g.POST("/logout", a.Logout, mw.Authenticate(v), mw.ValidateRefresh(v, m))
}

// RegisterTenants registers the admin-only tenant CRUD under
// /api/v1/web/tenants.
func RegisterTenants(e *echo.Echo, t *handler.TenantHandler, v *token.Verifier) {
	authn := mw.Authenticate(v)
	adminOnly := mw.RequireRole(model.RoleAdmin)
	tenantFields := []string{"name", "address"}

	g := e.Group("/api/v1/web/tenants")
	g.POST("", t.Create,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: tenantFields}),
		mw.ValidateBody(tenantSchema),
		authn, adminOnly,
	)
	g.GET("", t.List, authn, adminOnly)
	g.GET("/:id", t.GetByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
	g.PUT("/:id", t.UpdateByID,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: tenantFields, Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		mw.ValidateBody(tenantSchema),
		authn, adminOnly,
	)
	g.DELETE("/:id", t.DeleteByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
}

// RegisterUsers registers the admin-only user CRUD under /api/v1/web/users.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, v *token.Verifier) {
	authn := mw.Authenticate(v)
	adminOnly := mw.RequireRole(model.RoleAdmin)

	g := e.Group("/api/v1/web/users")
	g.POST("", u.Create,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: []string{"firstName", "lastName", "email", "password", "role"}}),
		mw.ValidateBody(createUserSchema),
		authn, adminOnly,
	)
	g.GET("", u.List,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Query: []string{"role"}}),
		mw.ValidateQuery(listUsersSchema),
		authn, adminOnly,
	)
	g.GET("/:id", u.GetByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
	g.PUT("/:id", u.UpdateByID,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: []string{"firstName", "lastName", "email", "role", "tenantId"}, Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		mw.ValidateBody(updateUserSchema),
		authn, adminOnly,
	)
	g.DELETE("/:id", u.DeleteByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
}

// RegisterManagers registers the admin-only manager CRUD under
// /api/v1/web/managers. Managers are users pinned to the manager role and a
// tenant; the routes share the user handler and differ only in schemas.
func RegisterManagers(e *echo.Echo, u *handler.UserHandler, v *token.Verifier) {
	authn := mw.Authenticate(v)
	adminOnly := mw.RequireRole(model.RoleAdmin)
	managerFields := []string{"firstName", "lastName", "email", "password", "role", "tenantId"}

	g := e.Group("/api/v1/web/managers")
	g.POST("", u.Create,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: managerFields}),
		mw.ValidateBody(createManagerSchema),
		authn, adminOnly,
	)
	g.GET("", u.ListManagers, authn, adminOnly)
	g.GET("/:id", u.GetByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
	g.PUT("/:id", u.UpdateByID,
		mw.SanitizeStrings(),
		mw.RejectUnknownFields(mw.AllowedFields{Body: []string{"firstName", "lastName", "email", "role", "tenantId"}, Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		mw.ValidateBody(updateManagerSchema),
		authn, adminOnly,
	)
	g.DELETE("/:id", u.DeleteByID,
		mw.RejectUnknownFields(mw.AllowedFields{Params: []string{"id"}}),
		mw.ValidateParams(idParamSchema),
		authn, adminOnly,
	)
}
