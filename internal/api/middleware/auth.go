package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userhub/directory-api/internal/core/ports"
)

// IdentityKey is the echo context key carrying the verified *domain.Identity.
const IdentityKey = "identity"

// OptionalAuth extracts and verifies an optional bearer token, injecting the
// embedded identity into the request context. It never rejects a request: a
// missing, malformed, expired or tampered token simply leaves the caller
// anonymous, and the authorization layer decides from there.
func OptionalAuth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return next(c)
			}

			identity, err := tokens.Verify(parts[1])
			if err != nil {
				return next(c)
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}
