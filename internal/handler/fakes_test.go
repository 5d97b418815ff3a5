package handler

import (
	"context"
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

	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/metrics"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/repository"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users  map[uint64]model.User
	nextID uint64
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context, role string) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, id uint64, firstName, lastName, email, role string, tenantID *uint64) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email == email {
			return repository.ErrEmailExists
		}
	}
	u.FirstName, u.LastName, u.Email, u.Role, u.TenantID = firstName, lastName, email, role, tenantID
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SoftDelete(_ context.Context, id uint64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeTenantStore is an in-memory TenantStore.
type fakeTenantStore struct {
	tenants map[uint64]model.Tenant
	nextID  uint64
	err     error
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: map[uint64]model.Tenant{}}
}

func (f *fakeTenantStore) Create(_ context.Context, name, address string) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, t := range f.tenants {
		if t.Name == name && t.Address == address {
			return 0, repository.ErrTenantExists
		}
	}
	f.nextID++
	f.tenants[f.nextID] = model.Tenant{ID: f.nextID, Name: name, Address: address}
	return f.nextID, nil
}

func (f *fakeTenantStore) GetByID(_ context.Context, id uint64) (model.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return model.Tenant{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTenantStore) List(_ context.Context) ([]model.Tenant, error) {
	var out []model.Tenant
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTenantStore) Update(_ context.Context, id uint64, name, address string) error {
	t, ok := f.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range f.tenants {
		if otherID != id && other.Name == name && other.Address == address {
			return repository.ErrTenantExists
		}
	}
	t.Name, t.Address = name, address
	f.tenants[id] = t
	return nil
}

func (f *fakeTenantStore) SoftDelete(_ context.Context, id uint64) error {
	if _, ok := f.tenants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tenants, id)
	return nil
}

// memSessions is an in-memory token.SessionStore.
type memSessions struct {
	rows   map[uint64]model.Session
	nextID uint64
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[uint64]model.Session{}}
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

// newJSONContext builds an echo context carrying a JSON body.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie missing", "cookie %q not set", name)
	return nil
}

func requireHTTPError(t *testing.T, err error, status int) {
	t.Helper()
	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	require.Equal(t, status, he.Status)
}

func timeIn(days int) time.Time {
	return time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
}
