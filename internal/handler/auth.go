package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/metrics"
	"github.com/devsahoo/auth-service/internal/middleware"
	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/queue"
	"github.com/devsahoo/auth-service/internal/repository"
	"github.com/devsahoo/auth-service/internal/token"
	"github.com/devsahoo/auth-service/internal/utils"
)

const dbTimeout = 5 * time.Second

// AuthHandler implements register, login, self, refresh and logout.
type AuthHandler struct {
	users        UserStore
	issuer       *token.Issuer
	logger       *slog.Logger
	metrics      *metrics.Collector
	audit        AuditPublisher
	cookieDomain string
	bcryptCost   int
}

func NewAuthHandler(users UserStore, issuer *token.Issuer, logger *slog.Logger, m *metrics.Collector, audit AuditPublisher, cookieDomain string, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		users:        users,
		issuer:       issuer,
		logger:       logger,
		metrics:      m,
		audit:        audit,
		cookieDomain: cookieDomain,
		bcryptCost:   bcryptCost,
	}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idResp struct {
	ID uint64 `json:"id"`
}

type userResp struct {
	ID        uint64  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	TenantID  *uint64 `json:"tenantId,omitempty"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		TenantID:  u.TenantID,
	}
}

// Register creates an identity and immediately issues both tokens as cookies.
// The role defaults to customer. 400 covers validation failures and duplicate
// emails alike.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}
	h.logger.Debug("new registration request", "email", req.Email)

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
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return httperr.Conflict("email already exists")
		}
		return httperr.Internal(err)
	}
	h.logger.Info("user has been registered", "id", id)
	h.metrics.RecordRegistration()

	if err := h.issueTokens(ctx, c, id, req.Role); err != nil {
		return err
	}
	h.publish(queue.AuthEvent{Action: queue.ActionUserRegistered, UserID: id, Email: req.Email, Role: req.Role})
	return c.JSON(http.StatusCreated, idResp{ID: id})
}

// Login verifies credentials and issues a fresh token pair. The failure
// message never reveals whether the email or the password was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	h.logger.Debug("new login request", "email", req.Email)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.metrics.RecordLogin(false)
			return httperr.BadRequest("email or password do not match")
		}
		return httperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		h.metrics.RecordLogin(false)
		return httperr.BadRequest("email or password do not match")
	}
	h.metrics.RecordLogin(true)

	if err := h.issueTokens(ctx, c, u.ID, u.Role); err != nil {
		return err
	}
	h.logger.Info("user has been logged in", "id", u.ID)
	h.publish(queue.AuthEvent{Action: queue.ActionUserLoggedIn, UserID: u.ID, Email: u.Email, Role: u.Role})
	return c.JSON(http.StatusCreated, idResp{ID: u.ID})
}

// Self returns the authenticated identity without the password hash.
func (h *AuthHandler) Self(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Refresh rotates the session behind a valid, non-revoked refresh token: a
// new session row is opened, the old one is deleted, and both cookies are
// reissued. Once the old row is gone the previous refresh token is dead even
// though its signature has not expired.
//
// Two concurrent refreshes with the same stale token can race: the loser's
// session lookup may still succeed if the winner's DELETE has not committed
// yet. The window is accepted; the linearizability gap closes as soon as the
// delete commits.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID := middleware.UserID(c)
	oldSessionID := middleware.SessionID(c)

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 400, not 404: the session-repair path must not reveal whether
			// the identity behind a stolen token still exists.
			return httperr.BadRequest("user with the token could not be found")
		}
		return httperr.Internal(err)
	}

	session, err := h.issuer.OpenSession(ctx, u.ID)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := h.issuer.CloseSession(ctx, oldSessionID); err != nil {
		return httperr.Internal(err)
	}
	if err := h.setTokenCookies(c, u.ID, u.Role, session); err != nil {
		return err
	}

	h.logger.Info("refresh token has been rotated", "id", u.ID, "session_id", session.ID)
	h.publish(queue.AuthEvent{Action: queue.ActionSessionRotated, UserID: u.ID, Role: u.Role, SessionID: session.ID})
	return c.JSON(http.StatusOK, idResp{ID: u.ID})
}

// Logout closes the session named by the refresh token and clears both
// cookies. Requires a valid access token and refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID := middleware.UserID(c)
	sessionID := middleware.SessionID(c)
	if err := h.issuer.CloseSession(ctx, sessionID); err != nil {
		return httperr.Internal(err)
	}
	h.clearTokenCookies(c)

	h.logger.Info("user has been logged out", "id", userID, "session_id", sessionID)
	h.publish(queue.AuthEvent{Action: queue.ActionUserLoggedOut, UserID: userID, SessionID: sessionID})
	return c.NoContent(http.StatusNoContent)
}

// issueTokens opens a session and sets both token cookies. Session creation
// happens before refresh issuance: the refresh token embeds the session id.
func (h *AuthHandler) issueTokens(ctx context.Context, c echo.Context, userID uint64, role string) error {
	session, err := h.issuer.OpenSession(ctx, userID)
	if err != nil {
		return httperr.Internal(err)
	}
	return h.setTokenCookies(c, userID, role, session)
}

func (h *AuthHandler) setTokenCookies(c echo.Context, userID uint64, role string, session model.Session) error {
	access, err := h.issuer.AccessToken(userID, role)
	if err != nil {
		return httperr.Internal(err)
	}
	refresh, err := h.issuer.RefreshToken(userID, role, session)
	if err != nil {
		return httperr.Internal(err)
	}
	h.metrics.RecordTokenIssued("access")
	h.metrics.RecordTokenIssued("refresh")

	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Domain:   h.cookieDomain,
		Path:     "/",
		MaxAge:   int(token.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    refresh,
		Domain:   h.cookieDomain,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (h *AuthHandler) clearTokenCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Domain:   h.cookieDomain,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// publish sends an audit event without blocking the response; failures are
// logged by the publisher and ignored.
func (h *AuthHandler) publish(ev queue.AuthEvent) {
	if h.audit == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = h.audit.PublishAuthEvent(ctx, ev)
	}()
}
