package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/userhub/directory-api/internal/api/middleware"
	"github.com/userhub/directory-api/internal/core/domain"
)

// callerIdentity returns the verified identity injected by the OptionalAuth
// middleware, or nil for an anonymous caller. A token that failed
// verification never reaches the context, so nil covers both cases.
func callerIdentity(c echo.Context) *domain.Identity {
	identity, _ := c.Get(middleware.IdentityKey).(*domain.Identity)
	return identity
}
