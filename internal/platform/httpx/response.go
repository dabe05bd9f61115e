// Package httpx renders the uniform response envelope used by every route:
// {ok: true, resultado: ...} on success and {ok: false, error: "..."} on
// failure.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	OK        bool        `json:"ok"`
	Resultado interface{} `json:"resultado,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c echo.Context, resultado interface{}) error {
	return c.JSON(http.StatusOK, Envelope{OK: true, Resultado: resultado})
}

// Fail writes a failure envelope with an explicit status.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{OK: false, Error: msg})
}

// ErrorHandler converts errors returned by handlers into the envelope.
// echo.HTTPError instances keep their status; domain errors are mapped
// through the apperr taxonomy; anything else is a masked 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = Fail(c, he.Code, msg)
		return
	}
	_ = Fail(c, apperr.Status(err), apperr.Message(err))
}
