package router

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devsahoo/auth-service/internal/config"
	"github.com/devsahoo/auth-service/internal/handler"
	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/metrics"
	"github.com/devsahoo/auth-service/internal/middleware"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/repository"
	"github.com/devsahoo/auth-service/internal/token"
	"github.com/devsahoo/auth-service/internal/utils"
)

// In-memory stores backing the full stack under test.

type memUsers struct {
	users  map[uint64]model.User
	nextID uint64
}

func (m *memUsers) Create(_ context.Context, u model.User) (uint64, error) {
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) List(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, id uint64, firstName, lastName, email, role string, tenantID *uint64) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName, u.Email, u.Role, u.TenantID = firstName, lastName, email, role, tenantID
	m.users[id] = u
	return nil
}

func (m *memUsers) SoftDelete(_ context.Context, id uint64) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memTenants struct {
	tenants map[uint64]model.Tenant
	nextID  uint64
}

func (m *memTenants) Create(_ context.Context, name, address string) (uint64, error) {
	for _, t := range m.tenants {
		if t.Name == name && t.Address == address {
			return 0, repository.ErrTenantExists
		}
	}
	m.nextID++
	m.tenants[m.nextID] = model.Tenant{ID: m.nextID, Name: name, Address: address}
	return m.nextID, nil
}

func (m *memTenants) GetByID(_ context.Context, id uint64) (model.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return model.Tenant{}, repository.ErrNotFound
	}
	return t, nil
}

func (m *memTenants) List(_ context.Context) ([]model.Tenant, error) {
	var out []model.Tenant
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTenants) Update(_ context.Context, id uint64, name, address string) error {
	t, ok := m.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Name, t.Address = name, address
	m.tenants[id] = t
	return nil
}

func (m *memTenants) SoftDelete(_ context.Context, id uint64) error {
	if _, ok := m.tenants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tenants, id)
	return nil
}

type memSessions struct {
	rows   map[uint64]model.Session
	nextID uint64
}

func (m *memSessions) CreateSession(_ context.Context, userID uint64, expiresAt time.Time) (model.Session, error) {
	m.nextID++
	s := model.Session{ID: m.nextID, UserID: userID, ExpiresAt: expiresAt}
	m.rows[s.ID] = s
	return s, nil
}

func (m *memSessions) GetSession(_ context.Context, id, userID uint64) (model.Session, error) {
	s, ok := m.rows[id]
	if !ok || s.UserID != userID {
		return model.Session{}, errors.New("not found")
	}
	return s, nil
}

func (m *memSessions) DeleteSession(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

type stack struct {
	e      *echo.Echo
	users  *memUsers
	issuer *token.Issuer
}

// newStack wires the full HTTP stack on in-memory stores: real routes, real
// middleware chains, real error handler.
func newStack(t *testing.T) *stack {
	t.Helper()
	return newStackWithLimiter(t, middleware.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
}

func newStackWithLimiter(t *testing.T, limiter echo.MiddlewareFunc) *stack {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	users := &memUsers{users: map[uint64]model.User{}}
	tenants := &memTenants{tenants: map[uint64]model.Tenant{}}
	sessions := &memSessions{rows: map[uint64]model.Session{}}

	secret := []byte("router-test-secret")
	issuer := token.NewIssuer(key, secret, "auth-service", sessions)
	verifier := token.NewVerifier(&key.PublicKey, secret, "auth-service", sessions)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authHandler := handler.NewAuthHandler(users, issuer, logger, collector, nil, "", bcrypt.MinCost)
	tenantHandler := handler.NewTenantHandler(tenants, logger)
	userHandler := handler.NewUserHandler(users, logger, nil, bcrypt.MinCost)

	e := echo.New()
	e.HTTPErrorHandler = httperr.NewHTTPErrorHandler(logger)
	RegisterRoutes(e, registry)
	RegisterAuth(e, authHandler, verifier, collector, limiter)
	RegisterTenants(e, tenantHandler, verifier)
	RegisterUsers(e, userHandler, verifier)
	RegisterManagers(e, userHandler, verifier)

	return &stack{e: e, users: users, issuer: issuer}
}

func (s *stack) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *stack) accessCookie(t *testing.T, userID uint64, role string) *http.Cookie {
	t.Helper()
	raw, err := s.issuer.AccessToken(userID, role)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.AccessCookie, Value: raw}
}

func (s *stack) seedUser(t *testing.T, email, role string) uint64 {
	t.Helper()
	hash, err := utils.HashPassword("Str0ng!pass", bcrypt.MinCost)
	require.NoError(t, err)
	id, err := s.users.Create(context.Background(), model.User{
		FirstName: "Seed", LastName: "User", Email: email, PasswordHash: hash, Role: role,
	})
	require.NoError(t, err)
	return id
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie missing", "cookie %q not set", name)
	return nil
}

func TestHealthAndWelcome(t *testing.T) {
	s := newStack(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "").Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/", "").Code)
}

func TestRegisterEndToEnd(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodPost, "/api/v1/web/auth/register",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	findCookie(t, rec, middleware.AccessCookie)
	findCookie(t, rec, middleware.RefreshCookie)
}

func TestRegisterCollectsAllViolations(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodPost, "/api/v1/web/auth/register",
		`{"firstName":"J","lastName":"Doe","email":"not-an-email","password":"weak"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "firstName")
	require.Contains(t, body, "email")
	require.Contains(t, body, "password")
}

func TestRegisterRejectsUnknownField(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodPost, "/api/v1/web/auth/register",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Str0ng!pass","isAdmin":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "isAdmin")
}

func TestRegisterSanitizesMarkup(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodPost, "/api/v1/web/auth/register",
		`{"firstName":"<b>Jane</b>","lastName":"Doe","email":"jane@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	u, err := s.users.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Jane", u.FirstName)
}

func TestLoginAndSelf(t *testing.T) {
	s := newStack(t)
	s.seedUser(t, "jane@example.com", model.RoleCustomer)

	rec := s.do(http.MethodPost, "/api/v1/web/auth/login",
		`{"email":"jane@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	access := findCookie(t, rec, middleware.AccessCookie)

	rec = s.do(http.MethodGet, "/api/v1/web/auth/self", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "jane@example.com")
}

func TestCredentialRoutesCountMalformedTraffic(t *testing.T) {
	// The limiter leads the chain, so even requests that fail field
	// rejection or validation spend a token.
	calls := 0
	counting := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			calls++
			return next(c)
		}
	}
	s := newStackWithLimiter(t, counting)

	rec := s.do(http.MethodPost, "/api/v1/web/auth/login", `{"email":"nope","debug":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, calls)

	rec = s.do(http.MethodPost, "/api/v1/web/auth/register", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 2, calls)
}

func TestSelfWithoutCookie(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodGet, "/api/v1/web/auth/self", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotationInvalidatesOldToken(t *testing.T) {
	s := newStack(t)
	s.seedUser(t, "jane@example.com", model.RoleCustomer)

	rec := s.do(http.MethodPost, "/api/v1/web/auth/login",
		`{"email":"jane@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	oldRefresh := findCookie(t, rec, middleware.RefreshCookie)

	rec = s.do(http.MethodPost, "/api/v1/web/auth/refresh", "", oldRefresh)
	require.Equal(t, http.StatusOK, rec.Code)
	newRefresh := findCookie(t, rec, middleware.RefreshCookie)
	require.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// The rotated-out token is revoked even though its signature is intact.
	rec = s.do(http.MethodPost, "/api/v1/web/auth/refresh", "", oldRefresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The new one still works.
	rec = s.do(http.MethodPost, "/api/v1/web/auth/refresh", "", newRefresh)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	s := newStack(t)
	s.seedUser(t, "jane@example.com", model.RoleCustomer)

	rec := s.do(http.MethodPost, "/api/v1/web/auth/login",
		`{"email":"jane@example.com","password":"Str0ng!pass"}`)
	access := findCookie(t, rec, middleware.AccessCookie)
	refresh := findCookie(t, rec, middleware.RefreshCookie)

	rec = s.do(http.MethodPost, "/api/v1/web/auth/logout", "", access, refresh)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/web/auth/refresh", "", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantRoutesAdminOnly(t *testing.T) {
	s := newStack(t)
	adminID := s.seedUser(t, "admin@example.com", model.RoleAdmin)
	managerID := s.seedUser(t, "manager@example.com", model.RoleManager)

	body := `{"name":"Acme Stores","address":"12 Main Street"}`

	rec := s.do(http.MethodPost, "/api/v1/web/tenants", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/web/tenants", body, s.accessCookie(t, managerID, model.RoleManager))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/web/tenants", body, s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/web/tenants", "", s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Acme Stores")
}

func TestTenantInvalidIDParam(t *testing.T) {
	s := newStack(t)
	adminID := s.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := s.do(http.MethodGet, "/api/v1/web/tenants/abc", "", s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManagerCreateRequiresTenant(t *testing.T) {
	s := newStack(t)
	adminID := s.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/v1/web/managers",
		`{"firstName":"Jane","lastName":"Doe","email":"m@example.com","password":"Str0ng!pass","role":"manager"}`,
		s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "tenantId")

	rec = s.do(http.MethodPost, "/api/v1/web/managers",
		`{"firstName":"Jane","lastName":"Doe","email":"m@example.com","password":"Str0ng!pass","role":"manager","tenantId":1}`,
		s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestUsersListFilterValidated(t *testing.T) {
	s := newStack(t)
	adminID := s.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := s.do(http.MethodGet, "/api/v1/web/users?role=wizard", "", s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/web/users?role=admin", "", s.accessCookie(t, adminID, model.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newStack(t)
	rec := s.do(http.MethodPost, "/api/v1/web/auth/register",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Str0ng!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "auth_registrations_total 1")
}
