package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Request scope names used in violation reports.
const (
	ScopeBody   = "body"
	ScopeQuery  = "query"
	ScopeParams = "params"
)

var errBadBody = echo.NewHTTPError(400, "request body must be a JSON object")

// readBodyMap decodes the request body into a flat map and restores the body
// so later readers (the next middleware, c.Bind in the handler) see it again.
// An empty body yields an empty map.
func readBodyMap(c echo.Context) (map[string]any, error) {
	req := c.Request()
	if req.Body == nil {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errBadBody
	}
	return m, nil
}

// writeBodyMap re-encodes a (sanitized or coerced) map as the request body so
// everything downstream only sees the clean version.
func writeBodyMap(c echo.Context, m map[string]any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	req := c.Request()
	req.Body = io.NopCloser(bytes.NewReader(raw))
	req.ContentLength = int64(len(raw))
	return nil
}

// queryMap flattens query parameters to their first value.
func queryMap(c echo.Context) map[string]any {
	m := map[string]any{}
	for k, vs := range c.QueryParams() {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m
}

// paramsMap collects path parameters.
func paramsMap(c echo.Context) map[string]any {
	m := map[string]any{}
	for _, name := range c.ParamNames() {
		m[name] = c.Param(name)
	}
	return m
}

// stringify turns a coerced scalar back into its wire form for query/path
// rewriting.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
