package ports

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
)

// UserRepository defines the persistence contract for users. Every mutating
// method runs inside a single transaction: the email-uniqueness check and the
// write are atomic with respect to concurrent writers, and a loser of a
// duplicate-email race observes domain.ErrEmailNotAvailable.
type UserRepository interface {
	// FindByEmail returns the user holding exactly this email (case-sensitive
	// match) with roles loaded, or domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns the user with roles loaded, or domain.ErrUserNotFound.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// List returns all users with roles loaded.
	List(ctx context.Context) ([]domain.User, error)
	// Create persists a new user and its role assignments, assigning the id.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update overwrites names and email, replaces the password hash only when
	// user.PasswordHash is non-empty, and replaces role assignments only when
	// replaceRoles is true.
	Update(ctx context.Context, user *domain.User, replaceRoles bool) (*domain.User, error)
	// Delete removes the user and its join rows. Returns false, not an error,
	// when no such id exists.
	Delete(ctx context.Context, id int64) (bool, error)
	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}
