package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type envelope struct {
	Errors []Violation `json:"errors"`
}

// NewHTTPErrorHandler returns the centralized Echo error handler. Every error
// escaping a handler or middleware funnels through here and comes out as the
// uniform envelope; internal causes go to the log only.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := envelope{Errors: []Violation{{
			Type: "InternalServerError",
			Msg:  "internal server error",
		}}}

		var e *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &e):
			status = e.Status
			if len(e.Violations) > 0 {
				body.Errors = e.Violations
			} else {
				body.Errors = []Violation{{Type: e.Type, Msg: e.Msg}}
			}
			if e.Status >= http.StatusInternalServerError {
				logger.Error("request failed", "type", e.Type, "err", e.Error(), "path", c.Path())
			}
		case errors.As(err, &he):
			status = he.Code
			body.Errors = []Violation{{Type: http.StatusText(he.Code), Msg: he.Error()}}
		default:
			logger.Error("unhandled error", "err", err, "path", c.Path())
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error("error response write failed", "err", writeErr)
		}
	}
}
