// Package middleware carries the ambient echo middleware for the API:
// request id propagation, request logging, and panic recovery. Every entry
// logs through zerolog and plays along with the envelope error handler by
// returning plain errors instead of writing responses itself.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID is the correlation header honoured on the way in and
// echoed on the way out.
const HeaderRequestID = "X-Request-ID"

// requestIDKey is the echo context key the other middleware read.
const requestIDKey = "request_id"

// RequestID assigns a request id to each request, honouring an inbound
// X-Request-ID header so mobile clients can correlate retries.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(requestIDKey, rid)
			c.Response().Header().Set(HeaderRequestID, rid)
			return next(c)
		}
	}
}

// requestID reads the id set by RequestID; empty when the middleware did
// not run (tests wiring a handler directly).
func requestID(c echo.Context) string {
	rid, _ := c.Get(requestIDKey).(string)
	return rid
}
