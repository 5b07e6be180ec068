package service

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
	"github.com/userhub/directory-api/internal/core/ports"
)

// RoleService is the role directory: it resolves names against the fixed
// catalog (Administrator, Guest) seeded once at boot.
type RoleService struct {
	repo ports.RoleRepository
}

func NewRoleService(repo ports.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

// Seed inserts the fixed catalog when the role table is empty. Safe to call
// on every boot.
func (s *RoleService) Seed(ctx context.Context) error {
	return s.repo.Seed(ctx)
}

func (s *RoleService) ReadAll(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}

// FindByNames resolves names to role records. Unresolvable names are dropped,
// not an error; callers decide the fallback.
func (s *RoleService) FindByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.repo.FindByNames(ctx, names)
}

func (s *RoleService) Administrator(ctx context.Context) (*domain.Role, error) {
	return s.repo.FindByName(ctx, domain.RoleAdministrator)
}

func (s *RoleService) Guest(ctx context.Context) (*domain.Role, error) {
	return s.repo.FindByName(ctx, domain.RoleGuest)
}
