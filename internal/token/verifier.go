package token

import (
	"context"
	"crypto/rsa"
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devsahoo/auth-service/internal/model"
)

// Claims is the decoded identity carried by a verified access token.
type Claims struct {
	UserID uint64
	Role   string
}

// RefreshClaims adds the backing session id carried in the jti claim.
type RefreshClaims struct {
	Claims
	SessionID uint64
}

// RefreshState tags the outcome of refresh-token verification. A boolean
// would let callers conflate "token bad" with "token revoked"; the tag keeps
// the two apart while the HTTP layer still reports both as a generic 401.
type RefreshState int

const (
	// RefreshMalformed covers everything wrong with the token itself:
	// absent, tampered, wrong algorithm, wrong issuer, expired.
	RefreshMalformed RefreshState = iota
	// RefreshRevoked means the signature checked out but no matching session
	// row exists, or the store could not be asked, which fails closed.
	RefreshRevoked
	// RefreshValid means signature and session row both check out.
	RefreshValid
)

// RefreshOutcome is the tagged result of VerifyRefresh. Claims and Session
// are populated only when State is RefreshValid.
type RefreshOutcome struct {
	State   RefreshState
	Claims  RefreshClaims
	Session model.Session
}

var errBadClaims = errors.New("token claims malformed")

// Verifier checks inbound tokens: access tokens against the RSA public key,
// refresh tokens against the shared secret plus the session store.
type Verifier struct {
	publicKey     *rsa.PublicKey
	refreshSecret []byte
	issuer        string
	sessions      SessionStore
}

func NewVerifier(publicKey *rsa.PublicKey, refreshSecret []byte, issuerName string, sessions SessionStore) *Verifier {
	return &Verifier{
		publicKey:     publicKey,
		refreshSecret: refreshSecret,
		issuer:        issuerName,
		sessions:      sessions,
	}
}

// VerifyAccess validates an access token with algorithm and issuer pinned
// and returns its decoded claims. Any failure (missing, expired, tampered,
// wrong key) is a single opaque error; the HTTP layer maps it to 401.
func (v *Verifier) VerifyAccess(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) { return v.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return Claims{}, jwt.ErrTokenUnverifiable
	}
	claims, err := decodeClaims(tok)
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token's signature, then cross-checks the
// session row keyed by (jti, sub). No row means the token was rotated out or
// the user logged out: revoked. A store failure is also treated as revoked;
// availability is sacrificed for safety, never the other way around.
func (v *Verifier) VerifyRefresh(ctx context.Context, raw string) RefreshOutcome {
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) { return v.refreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return RefreshOutcome{State: RefreshMalformed}
	}
	claims, err := decodeClaims(tok)
	if err != nil {
		return RefreshOutcome{State: RefreshMalformed}
	}
	mc, _ := tok.Claims.(jwt.MapClaims)
	jti, _ := mc["jti"].(string)
	sessionID, err := strconv.ParseUint(jti, 10, 64)
	if err != nil {
		return RefreshOutcome{State: RefreshMalformed}
	}

	session, err := v.sessions.GetSession(ctx, sessionID, claims.UserID)
	if err != nil {
		// Fail closed: not-found and store-unavailable both read as revoked.
		return RefreshOutcome{State: RefreshRevoked}
	}
	return RefreshOutcome{
		State:   RefreshValid,
		Claims:  RefreshClaims{Claims: claims, SessionID: sessionID},
		Session: session,
	}
}

func decodeClaims(tok *jwt.Token) (Claims, error) {
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errBadClaims
	}
	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return Claims{}, errBadClaims
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return Claims{}, errBadClaims
	}
	return Claims{UserID: userID, Role: role}, nil
}
