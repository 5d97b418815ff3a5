package middleware

import (
	"fmt"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
)

// AllowedFields whitelists field names per request scope. Anything present
// beyond the whitelist rejects the request outright, no silent dropping.
type AllowedFields struct {
	Body   []string
	Query  []string
	Params []string
}

// RejectUnknownFields returns middleware that compares the fields actually
// present in body, query and params against the whitelist and rejects the
// request with the offending scope and field names when anything extra shows
// up.
func RejectUnknownFields(allowed AllowedFields) echo.MiddlewareFunc {
	sets := map[string]map[string]bool{
		ScopeBody:   toSet(allowed.Body),
		ScopeQuery:  toSet(allowed.Query),
		ScopeParams: toSet(allowed.Params),
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := readBodyMap(c)
			if err != nil {
				return httperr.Validation([]httperr.Violation{{
					Type: "ValidationError", Msg: "request body must be a JSON object", Location: ScopeBody,
				}})
			}
			scopes := map[string]map[string]any{
				ScopeBody:   body,
				ScopeQuery:  queryMap(c),
				ScopeParams: paramsMap(c),
			}
			var violations []httperr.Violation
			for _, scope := range []string{ScopeQuery, ScopeBody, ScopeParams} {
				for _, name := range extraKeys(scopes[scope], sets[scope]) {
					violations = append(violations, httperr.Violation{
						Type:     "ValidationError",
						Msg:      fmt.Sprintf("unexpected field %q in %s", name, scope),
						Path:     name,
						Location: scope,
					})
				}
			}
			if len(violations) > 0 {
				return httperr.Validation(violations)
			}
			return next(c)
		}
	}
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func extraKeys(data map[string]any, allowed map[string]bool) []string {
	var extra []string
	for k := range data {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
