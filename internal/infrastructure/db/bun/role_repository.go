package bun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/userhub/directory-api/internal/core/domain"
)

// RoleRepository persists the fixed role catalog.
type RoleRepository struct {
	db *bun.DB
}

func NewRoleRepository(db *bun.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.NewSelect().
		Model(&roles).
		Order("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	role := new(domain.Role)
	err := r.db.NewSelect().
		Model(role).
		Where("r.name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

// FindByNames returns only the roles that exist; names with no catalog entry
// are dropped silently.
func (r *RoleRepository) FindByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var roles []domain.Role
	err := r.db.NewSelect().
		Model(&roles).
		Where("r.name IN (?)", bun.In(names)).
		Order("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find roles by names: %w", err)
	}
	return roles, nil
}

// Seed inserts Administrator and Guest only when the table is empty. The
// count and the inserts share one transaction so concurrent boots cannot
// double-seed.
func (r *RoleRepository) Seed(ctx context.Context) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().Model((*domain.Role)(nil)).Count(ctx)
		if err != nil {
			return fmt.Errorf("count roles: %w", err)
		}
		if n > 0 {
			return nil
		}

		catalog := []domain.Role{
			{Name: domain.RoleAdministrator},
			{Name: domain.RoleGuest},
		}
		if _, err := tx.NewInsert().Model(&catalog).Exec(ctx); err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		return nil
	})
}
