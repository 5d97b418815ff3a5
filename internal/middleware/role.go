package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
)

// RequireRole enforces that the authenticated identity's role is a member of
// the given set. Membership is exact: there is no role hierarchy, so admin
// gains nothing unless listed. Denial is a 403, distinct from the 401 an
// unauthenticated request gets; it assumes Authenticate ran earlier in the
// chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return httperr.Authorization("you don't have enough permission")
			}
			return next(c)
		}
	}
}
