package ports

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
)

// UserViewCache is a read-through cache of outward user views. Misses and
// backend failures are indistinguishable to callers: both return ok=false and
// the caller falls back to the repository.
type UserViewCache interface {
	GetUser(ctx context.Context, id int64) (*domain.User, bool)
	SetUser(ctx context.Context, user *domain.User)
	GetList(ctx context.Context) ([]domain.User, bool)
	SetList(ctx context.Context, users []domain.User)
	// Invalidate drops the list view and the given user ids.
	Invalidate(ctx context.Context, ids ...int64)
}
