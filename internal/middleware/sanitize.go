package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/devsahoo/auth-service/internal/httperr"
)

// SanitizeStrings returns middleware that strips all markup tags and
// attributes from every string field in body, query and path parameters,
// leaving only text content. Non-string values pass through untouched and
// only flat fields are inspected (nested objects are not walked). Runs before
// validation so schemas already see the stripped values.
func SanitizeStrings() echo.MiddlewareFunc {
	policy := bluemonday.StrictPolicy()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := readBodyMap(c)
			if err != nil {
				return httperr.Validation([]httperr.Violation{{
					Type: "ValidationError", Msg: "request body must be a JSON object", Location: ScopeBody,
				}})
			}
			if sanitizeFlat(policy, body) {
				if err := writeBodyMap(c, body); err != nil {
					return httperr.Internal(err)
				}
			}

			query := c.QueryParams()
			changedQuery := false
			for k, vs := range query {
				for i, v := range vs {
					if s := policy.Sanitize(v); s != v {
						query[k][i] = s
						changedQuery = true
					}
				}
			}
			if changedQuery {
				c.Request().URL.RawQuery = query.Encode()
			}

			names := c.ParamNames()
			values := make([]string, len(names))
			for i, name := range names {
				values[i] = policy.Sanitize(c.Param(name))
			}
			c.SetParamValues(values...)

			return next(c)
		}
	}
}

// sanitizeFlat rewrites string values in place and reports whether anything
// changed.
func sanitizeFlat(policy *bluemonday.Policy, m map[string]any) bool {
	changed := false
	for k, v := range m {
		if s, ok := v.(string); ok {
			if clean := policy.Sanitize(s); clean != s {
				m[k] = clean
				changed = true
			}
		}
	}
	return changed
}
