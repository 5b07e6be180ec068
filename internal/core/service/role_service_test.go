package service

import (
	"context"
	"testing"

	"github.com/userhub/directory-api/internal/core/domain"
)

type countingRoleRepo struct {
	findByNamesCalls int
	seedCalls        int
}

func (r *countingRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	return []domain.Role{
		{ID: 1, Name: domain.RoleAdministrator},
		{ID: 2, Name: domain.RoleGuest},
	}, nil
}

func (r *countingRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	switch name {
	case domain.RoleAdministrator:
		return &domain.Role{ID: 1, Name: name}, nil
	case domain.RoleGuest:
		return &domain.Role{ID: 2, Name: name}, nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *countingRoleRepo) FindByNames(_ context.Context, names []string) ([]domain.Role, error) {
	r.findByNamesCalls++
	var out []domain.Role
	for _, n := range names {
		if role, err := r.FindByName(context.Background(), n); err == nil {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (r *countingRoleRepo) Seed(_ context.Context) error {
	r.seedCalls++
	return nil
}

func TestRoleService_FindByNames_EmptyInputSkipsRepository(t *testing.T) {
	repo := &countingRoleRepo{}
	svc := NewRoleService(repo)

	roles, err := svc.FindByNames(context.Background(), nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no roles, got %v", roles)
	}
	if repo.findByNamesCalls != 0 {
		t.Fatalf("repository must not be queried for an empty name list")
	}
}

func TestRoleService_FindByNames_DropsUnresolvable(t *testing.T) {
	svc := NewRoleService(&countingRoleRepo{})

	roles, err := svc.FindByNames(context.Background(), []string{domain.RoleGuest, "Wizard"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(roles) != 1 || roles[0].Name != domain.RoleGuest {
		t.Fatalf("expected only Guest, got %v", roles)
	}
}

func TestRoleService_FixedLookups(t *testing.T) {
	svc := NewRoleService(&countingRoleRepo{})

	admin, err := svc.Administrator(context.Background())
	if err != nil || admin.Name != domain.RoleAdministrator {
		t.Fatalf("administrator lookup: %+v, %v", admin, err)
	}
	guest, err := svc.Guest(context.Background())
	if err != nil || guest.Name != domain.RoleGuest {
		t.Fatalf("guest lookup: %+v, %v", guest, err)
	}
}
