package token

import (
	"context"
	"crypto/rsa"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devsahoo/auth-service/internal/model"
)

// AccessTokenTTL is the validity window of an access token. Access tokens are
// never stored server-side; signature plus expiry is their whole authority.
const AccessTokenTTL = time.Hour

// SessionStore is the persistence contract the token lifecycle depends on.
// *repository.SessionRepo satisfies it; tests substitute an in-memory fake.
type SessionStore interface {
	CreateSession(ctx context.Context, userID uint64, expiresAt time.Time) (model.Session, error)
	GetSession(ctx context.Context, id, userID uint64) (model.Session, error)
	DeleteSession(ctx context.Context, id uint64) error
}

// Issuer mints access and refresh tokens and manages the session rows that
// back refresh tokens.
type Issuer struct {
	privateKey    *rsa.PrivateKey
	refreshSecret []byte
	issuer        string
	sessions      SessionStore
	now           func() time.Time
}

// NewIssuer wires an Issuer from its collaborators. issuerName ends up in the
// iss claim of every token and is pinned again on verification.
func NewIssuer(privateKey *rsa.PrivateKey, refreshSecret []byte, issuerName string, sessions SessionStore) *Issuer {
	return &Issuer{
		privateKey:    privateKey,
		refreshSecret: refreshSecret,
		issuer:        issuerName,
		sessions:      sessions,
		now:           time.Now,
	}
}

// AccessToken signs a one-hour RS256 token carrying the identity's id and
// role.
func (i *Issuer) AccessToken(userID uint64, role string) (string, error) {
	now := i.now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"iss":  i.issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(AccessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.privateKey)
}

// RefreshToken signs an HS256 token whose jti is the backing session's id.
// The embedded expiry is aligned to the session row's expiry so that the
// cryptographic window and the session lifetime agree; revocation authority
// stays with the row regardless.
func (i *Issuer) RefreshToken(userID uint64, role string, session model.Session) (string, error) {
	now := i.now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"jti":  strconv.FormatUint(session.ID, 10),
		"iss":  i.issuer,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.UTC().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
}

// OpenSession persists a new session row expiring one Gregorian year from
// now (366 days when the current year is a leap year, 365 otherwise) and
// returns it with its generated id. The row must exist before the refresh
// token is minted, since the token embeds the row id.
func (i *Issuer) OpenSession(ctx context.Context, userID uint64) (model.Session, error) {
	now := i.now().UTC()
	days := 365
	if isLeapYear(now.Year()) {
		days = 366
	}
	return i.sessions.CreateSession(ctx, userID, now.Add(time.Duration(days)*24*time.Hour))
}

// CloseSession deletes a session row, revoking the refresh token bound to
// it. Closing an already-closed session is not an error.
func (i *Issuer) CloseSession(ctx context.Context, sessionID uint64) error {
	return i.sessions.DeleteSession(ctx, sessionID)
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
