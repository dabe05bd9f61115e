package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func run(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return c, rec, err
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestIDHonoursInboundHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set(HeaderRequestID, "retry-42")

	c, rec, err := run(t, RequestID(), okHandler, req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := requestID(c); got != "retry-42" {
		t.Errorf("context id = %q, want inbound header value", got)
	}
	if got := rec.Header().Get(HeaderRequestID); got != "retry-42" {
		t.Errorf("response header = %q", got)
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)

	c, rec, err := run(t, RequestID(), okHandler, req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	rid := requestID(c)
	if rid == "" {
		t.Fatal("no request id assigned")
	}
	if rec.Header().Get(HeaderRequestID) != rid {
		t.Error("response header does not match context id")
	}
}

func TestRecoveryConvertsPanicToError(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	panicking := func(echo.Context) error { panic("boom") }
	req := httptest.NewRequest(http.MethodGet, "/records", nil)

	_, _, err := run(t, Recovery(logger), panicking, req)
	if err == nil {
		t.Fatal("panic swallowed, want error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("panic not logged")
	}
}

func TestLoggerIncludesRequestID(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/physios", nil)
	req.Header.Set(HeaderRequestID, "trace-7")

	chain := RequestID()(Logger(logger)(okHandler))
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := chain(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}

	line := buf.String()
	if !strings.Contains(line, `"request_id":"trace-7"`) {
		t.Errorf("log line missing request id: %s", line)
	}
	if !strings.Contains(line, `"path":"/physios"`) {
		t.Errorf("log line missing path: %s", line)
	}
}
