package ports

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
)

// UserInput carries the caller-supplied fields for create and update.
// Roles holds role names; resolution against the catalog is the service's
// concern. An empty Password on update means "keep the current one".
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Roles     []string
}

// UserService owns the user lifecycle and its invariants.
type UserService interface {
	// ValidateLogin verifies credentials. An unknown email and a wrong
	// password both fail with domain.ErrInvalidCredentials.
	ValidateLogin(ctx context.Context, email, password string) (*domain.User, error)
	// Create persists a new user. Unresolvable or absent role names fall
	// back to the Guest role.
	Create(ctx context.Context, actor *domain.Identity, input UserInput) (*domain.User, error)
	// Update overwrites names and email, rehashes the password only when one
	// is supplied, and replaces roles only when the resolved list is
	// non-empty.
	Update(ctx context.Context, actor *domain.Identity, id int64, input UserInput) (*domain.User, error)
	// Delete removes the user; false (not an error) when the id is absent.
	Delete(ctx context.Context, actor *domain.Identity, id int64) (bool, error)
	Read(ctx context.Context, id int64) (*domain.User, error)
	ReadAll(ctx context.Context) ([]domain.User, error)
}

// RoleDirectory resolves names against the fixed role catalog.
type RoleDirectory interface {
	ReadAll(ctx context.Context) ([]domain.Role, error)
	FindByNames(ctx context.Context, names []string) ([]domain.Role, error)
	Administrator(ctx context.Context) (*domain.Role, error)
	Guest(ctx context.Context) (*domain.Role, error)
}

// TokenService mints and verifies the signed bearer tokens that carry the
// authenticated identity between requests.
type TokenService interface {
	// Mint signs a token whose subject is the user's identity snapshot
	// (id, names, email, role names; never the password hash).
	Mint(user *domain.User) (*domain.Authentication, error)
	// Verify checks signature, issuer, audience and expiry. On any failure it
	// returns an error and no partial identity.
	Verify(token string) (*domain.Identity, error)
}
