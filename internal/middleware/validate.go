package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/validate"
)

// ValidateBody validates and coerces the JSON body against a schema. All
// violations are collected before rejecting. On success the body is replaced
// with the coerced map, so handlers binding the body only ever see clean,
// normalized data.
func ValidateBody(s validate.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := readBodyMap(c)
			if err != nil {
				return httperr.Validation([]httperr.Violation{{
					Type: "ValidationError", Msg: "request body must be a JSON object", Location: ScopeBody,
				}})
			}
			clean, violations := s.Validate(ScopeBody, body)
			if len(violations) > 0 {
				return httperr.Validation(violations)
			}
			if err := writeBodyMap(c, clean); err != nil {
				return httperr.Internal(err)
			}
			return next(c)
		}
	}
}

// ValidateQuery validates and coerces query parameters, rewriting the query
// string with the normalized values.
func ValidateQuery(s validate.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clean, violations := s.Validate(ScopeQuery, queryMap(c))
			if len(violations) > 0 {
				return httperr.Validation(violations)
			}
			query := c.QueryParams()
			for k, v := range clean {
				query.Set(k, stringify(v))
			}
			c.Request().URL.RawQuery = query.Encode()
			return next(c)
		}
	}
}

// ValidateParams validates and coerces path parameters in place.
func ValidateParams(s validate.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clean, violations := s.Validate(ScopeParams, paramsMap(c))
			if len(violations) > 0 {
				return httperr.Validation(violations)
			}
			names := c.ParamNames()
			values := make([]string, len(names))
			for i, name := range names {
				if v, ok := clean[name]; ok {
					values[i] = stringify(v)
				} else {
					values[i] = c.Param(name)
				}
			}
			c.SetParamValues(values...)
			return next(c)
		}
	}
}
