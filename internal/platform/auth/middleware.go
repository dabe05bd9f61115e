package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Protect returns middleware gating a route to the given role allow-list.
// It requires an "Authorization: Bearer <token>" header; a header that is
// present but lacks the Bearer prefix is rejected rather than passed through
// with garbage. On success the decoded Identity is attached to the request
// context.
func Protect(ts *TokenService, roles ...Role) echo.MiddlewareFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apperr.E(apperr.ErrUnauthenticated, "Usuario no autorizado")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.E(apperr.ErrUnauthenticated, "Usuario no autorizado")
			}

			identity, err := ts.Verify(parts[1])
			if err != nil {
				return apperr.E(apperr.ErrUnauthenticated, "Usuario no autorizado")
			}

			if !allowed[identity.Role] {
				return apperr.E(apperr.ErrForbidden, "Usuario no autorizado")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IdentityFromContext returns the identity attached by Protect. The second
// return is false on routes that did not pass through the guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by internal calls made on behalf of a request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
