package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/devsahoo/auth-service/internal/httperr"
)

func TestRejectUnknownFieldsAllowsWhitelisted(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodPost, "/", `{"email":"a@b.com","password":"x"}`)

	called := false
	h := RejectUnknownFields(AllowedFields{Body: []string{"email", "password"}})(func(c echo.Context) error {
		called = true
		return nil
	})
	require.NoError(t, h(c))
	require.True(t, called)
}

func TestRejectUnknownFieldsRejectsExtraBodyField(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodPost, "/", `{"email":"a@b.com","isAdmin":true}`)

	h := RejectUnknownFields(AllowedFields{Body: []string{"email"}})(func(c echo.Context) error { return nil })
	err := h(c)
	require.Error(t, err)

	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Status)
	require.Len(t, he.Violations, 1)
	require.Equal(t, "isAdmin", he.Violations[0].Path)
	require.Equal(t, ScopeBody, he.Violations[0].Location)
}

func TestRejectUnknownFieldsRejectsExtraQuery(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodGet, "/?role=admin&debug=1", "")

	h := RejectUnknownFields(AllowedFields{Query: []string{"role"}})(func(c echo.Context) error { return nil })
	err := h(c)

	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	require.Len(t, he.Violations, 1)
	require.Equal(t, "debug", he.Violations[0].Path)
	require.Equal(t, ScopeQuery, he.Violations[0].Location)
}

func TestRejectUnknownFieldsReportsEveryExtra(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodPost, "/?x=1", `{"a":1,"b":2}`)

	h := RejectUnknownFields(AllowedFields{})(func(c echo.Context) error { return nil })
	err := h(c)

	var he *httperr.Error
	require.ErrorAs(t, err, &he)
	require.Len(t, he.Violations, 3)
}
