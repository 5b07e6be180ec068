package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/directory-api/internal/core/domain"
	"github.com/userhub/directory-api/internal/core/ports"
)

// UserService owns the user lifecycle: credential validation, creation,
// mutation and deletion, plus the email-uniqueness and role-set invariants.
// Uniqueness is enforced inside the repository's transaction; role
// resolution happens up front because the catalog is read-only after boot.
type UserService struct {
	users  ports.UserRepository
	roles  ports.RoleDirectory
	hasher *PasswordHasher
	cache  ports.UserViewCache
	audit  ports.AuditSink
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, roles ports.RoleDirectory, hasher *PasswordHasher, cache ports.UserViewCache, audit ports.AuditSink, log zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		cache:  cache,
		audit:  audit,
		log:    log,
	}
}

// ValidateLogin verifies credentials against the stored hash. An unknown
// email and a wrong password are indistinguishable to the caller: both fail
// with domain.ErrInvalidCredentials.
func (s *UserService) ValidateLogin(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	s.record(domain.AuditLoginSucceeded, user.ID, nil)
	return user, nil
}

// Create persists a new user. Role names are resolved against the catalog;
// when nothing resolves (none requested, or none matched) the user gets
// exactly the Guest role. The email-uniqueness check runs inside the
// repository transaction so at most one of two concurrent writers wins.
func (s *UserService) Create(ctx context.Context, actor *domain.Identity, input ports.UserInput) (*domain.User, error) {
	roles, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		guest, err := s.roles.Guest(ctx)
		if err != nil {
			return nil, err
		}
		roles = []domain.Role{*guest}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, created.ID)
	s.record(domain.AuditUserCreated, created.ID, actor)
	s.log.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

// Update overwrites names and email, rehashes the password only when a new
// one is supplied, and replaces the role set only when the resolved list is
// non-empty. An empty or unresolvable role list leaves existing roles
// untouched; this asymmetry with Create's Guest fallback matches the
// documented lifecycle and must not be unified.
func (s *UserService) Update(ctx context.Context, actor *domain.Identity, id int64, input ports.UserInput) (*domain.User, error) {
	roles, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	var hash string
	if input.Password != "" {
		if hash, err = s.hasher.Hash(input.Password); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.Update(ctx, &domain.User{
		ID:           id,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	}, len(roles) > 0)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.record(domain.AuditUserUpdated, id, actor)
	return updated, nil
}

// Delete removes the user and, through the join, its role assignments.
// A missing id yields false, never an error.
func (s *UserService) Delete(ctx context.Context, actor *domain.Identity, id int64) (bool, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx, id)
		s.record(domain.AuditUserDeleted, id, actor)
		s.log.Info().Int64("user_id", id).Msg("user deleted")
	}
	return deleted, nil
}

// Read returns the user with roles loaded, or domain.ErrUserNotFound.
func (s *UserService) Read(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache != nil {
		if user, ok := s.cache.GetUser(ctx, id); ok {
			return user, nil
		}
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetUser(ctx, user)
	}
	return user, nil
}

// ReadAll returns every user with roles loaded.
func (s *UserService) ReadAll(ctx context.Context) ([]domain.User, error) {
	if s.cache != nil {
		if users, ok := s.cache.GetList(ctx); ok {
			return users, nil
		}
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetList(ctx, users)
	}
	return users, nil
}

func (s *UserService) resolveRoles(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.roles.FindByNames(ctx, names)
}

func (s *UserService) invalidate(ctx context.Context, ids ...int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
}

func (s *UserService) record(action domain.AuditAction, subjectID int64, actor *domain.Identity) {
	if s.audit == nil {
		return
	}
	event := domain.AuditEvent{
		Action:    action,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}
	if actor != nil {
		event.ActorID = actor.ID
	}
	s.audit.Enqueue(event)
}
