package bun

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/userhub/directory-api/internal/core/domain"
	"github.com/userhub/directory-api/internal/core/ports"
	"github.com/userhub/directory-api/internal/core/service"
)

// RootAccount describes the bootstrap administrator created on first boot.
type RootAccount struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Seeder prepares the database for serving: schema, role catalog, root
// account. Every step is idempotent so Seed is safe on every boot.
type Seeder struct {
	db     *bun.DB
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher *service.PasswordHasher
	root   RootAccount
	log    zerolog.Logger
}

func NewSeeder(db *bun.DB, users ports.UserRepository, roles ports.RoleRepository, hasher *service.PasswordHasher, root RootAccount, log zerolog.Logger) *Seeder {
	return &Seeder{
		db:     db,
		users:  users,
		roles:  roles,
		hasher: hasher,
		root:   root,
		log:    log,
	}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if err := CreateSchema(ctx, s.db); err != nil {
		return err
	}
	if err := s.roles.Seed(ctx); err != nil {
		return err
	}
	return s.seedRoot(ctx)
}

// seedRoot creates the root administrator when the user table is empty.
func (s *Seeder) seedRoot(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	admin, err := s.roles.FindByName(ctx, domain.RoleAdministrator)
	if err != nil {
		return fmt.Errorf("seed root account: %w", err)
	}

	hash, err := s.hasher.Hash(s.root.Password)
	if err != nil {
		return fmt.Errorf("seed root account: %w", err)
	}

	if _, err := s.users.Create(ctx, &domain.User{
		FirstName:    s.root.FirstName,
		LastName:     s.root.LastName,
		Email:        s.root.Email,
		PasswordHash: hash,
		Roles:        []domain.Role{*admin},
	}); err != nil {
		return fmt.Errorf("seed root account: %w", err)
	}

	s.log.Info().Str("email", s.root.Email).Msg("root account seeded")
	return nil
}
