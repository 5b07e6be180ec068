package ports

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
)

// RoleRepository defines persistence for the fixed role catalog.
type RoleRepository interface {
	// List returns the whole catalog.
	List(ctx context.Context) ([]domain.Role, error)
	// FindByName returns the role or domain.ErrRoleNotFound.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// FindByNames returns only the roles that exist; unresolvable names are
	// silently dropped.
	FindByNames(ctx context.Context, names []string) ([]domain.Role, error)
	// Seed inserts the fixed catalog when the table is empty. Idempotent.
	Seed(ctx context.Context) error
}
