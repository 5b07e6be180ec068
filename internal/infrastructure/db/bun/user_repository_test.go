package bun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/userhub/directory-api/internal/core/domain"
)

// newTestRepos opens a per-test in-memory sqlite database, creates the
// schema and seeds the role catalog. cache=shared keeps the database alive
// across the pool's connections; the test name keys the database so tests
// do not share state.
func newTestRepos(t *testing.T) (*UserRepository, *RoleRepository) {
	t.Helper()
	ctx := context.Background()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		name,
	)

	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	roles := NewRoleRepository(db)
	if err := roles.Seed(ctx); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return NewUserRepository(db), roles
}

func mustCreateUser(t *testing.T, users *UserRepository, roles *RoleRepository, email string, roleNames ...string) *domain.User {
	t.Helper()
	ctx := context.Background()

	assigned, err := roles.FindByNames(ctx, roleNames)
	if err != nil {
		t.Fatalf("resolve roles: %v", err)
	}
	created, err := users.Create(ctx, &domain.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Roles:        assigned,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return created
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	created := mustCreateUser(t, users, roles, "ada@example.com", domain.RoleAdministrator, domain.RoleGuest)
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if len(created.Roles) != 2 {
		t.Fatalf("expected 2 roles loaded after create, got %d", len(created.Roles))
	}

	byEmail, err := users.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != created.ID || !byEmail.HasRole(domain.RoleAdministrator) {
		t.Fatalf("unexpected user loaded: %+v", byEmail)
	}

	if _, err := users.FindByID(ctx, created.ID+100); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for missing id, got %v", err)
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	mustCreateUser(t, users, roles, "ada@example.com", domain.RoleGuest)

	_, err := users.Create(ctx, &domain.User{
		FirstName:    "Grace",
		LastName:     "Hopper",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	})
	if !errors.Is(err, domain.ErrEmailNotAvailable) {
		t.Fatalf("expected ErrEmailNotAvailable, got %v", err)
	}

	n, err := users.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 user after rejected duplicate, got %d", n)
	}
}

func TestUserRepository_Create_ConcurrentDuplicateEmail(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	guest, err := roles.FindByName(ctx, domain.RoleGuest)
	if err != nil {
		t.Fatalf("find guest role: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = users.Create(ctx, &domain.User{
				FirstName:    "Ada",
				LastName:     "Lovelace",
				Email:        "ada@example.com",
				PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
				Roles:        []domain.Role{*guest},
			})
		}(i)
	}
	wg.Wait()

	var okCount, takenCount int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrEmailNotAvailable):
			takenCount++
		default:
			t.Fatalf("unexpected error from racing create: %v", err)
		}
	}
	if okCount != 1 || takenCount != 1 {
		t.Fatalf("expected exactly one winner and one ErrEmailNotAvailable, got ok=%d taken=%d", okCount, takenCount)
	}

	n, err := users.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 row after the race, got %d", n)
	}
}

func TestUserRepository_UniqueIndexBackstop(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	mustCreateUser(t, users, roles, "ada@example.com", domain.RoleGuest)

	// Bypass the repository's in-transaction scan so the insert hits the
	// unique index directly, the way an interleaved writer would.
	_, err := users.db.NewInsert().Model(&domain.User{
		FirstName:    "Grace",
		LastName:     "Hopper",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}).Exec(ctx)
	if err == nil {
		t.Fatal("expected the unique index to reject the duplicate email")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("driver error not recognized as a unique violation: %v", err)
	}
}

func TestUserRepository_Update_EmailConflict(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	ada := mustCreateUser(t, users, roles, "ada@example.com", domain.RoleGuest)
	grace := mustCreateUser(t, users, roles, "grace@example.com", domain.RoleGuest)

	_, err := users.Update(ctx, &domain.User{
		ID:        grace.ID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     ada.Email,
	}, false)
	if !errors.Is(err, domain.ErrEmailNotAvailable) {
		t.Fatalf("expected ErrEmailNotAvailable for another user's email, got %v", err)
	}

	// Keeping your own email is not a conflict.
	updated, err := users.Update(ctx, &domain.User{
		ID:        grace.ID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     grace.Email,
	}, false)
	if err != nil {
		t.Fatalf("update with own email: %v", err)
	}
	if updated.FirstName != "Grace" {
		t.Fatalf("expected updated name, got %+v", updated)
	}
}

func TestUserRepository_Update_RoleAndPasswordSemantics(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	ada := mustCreateUser(t, users, roles, "ada@example.com", domain.RoleGuest)

	// replaceRoles=false leaves assignments and the password untouched.
	kept, err := users.Update(ctx, &domain.User{
		ID:        ada.ID,
		FirstName: "Ada",
		LastName:  "King",
		Email:     ada.Email,
	}, false)
	if err != nil {
		t.Fatalf("update without roles: %v", err)
	}
	if !kept.HasRole(domain.RoleGuest) || len(kept.Roles) != 1 {
		t.Fatalf("expected Guest assignment preserved, got %v", kept.RoleNames())
	}
	if kept.PasswordHash != ada.PasswordHash {
		t.Fatal("password must not change when no hash is supplied")
	}

	// replaceRoles=true swaps the assignment set and a supplied hash sticks.
	admin, err := roles.FindByName(ctx, domain.RoleAdministrator)
	if err != nil {
		t.Fatalf("find administrator role: %v", err)
	}
	replaced, err := users.Update(ctx, &domain.User{
		ID:           ada.ID,
		FirstName:    "Ada",
		LastName:     "King",
		Email:        ada.Email,
		PasswordHash: "$2a$10$vutsrqponmlkjihgfedcba",
		Roles:        []domain.Role{*admin},
	}, true)
	if err != nil {
		t.Fatalf("update replacing roles: %v", err)
	}
	if !replaced.HasRole(domain.RoleAdministrator) || replaced.HasRole(domain.RoleGuest) {
		t.Fatalf("expected roles replaced with Administrator only, got %v", replaced.RoleNames())
	}
	if replaced.PasswordHash != "$2a$10$vutsrqponmlkjihgfedcba" {
		t.Fatal("supplied password hash did not persist")
	}
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	users, _ := newTestRepos(t)

	_, err := users.Update(context.Background(), &domain.User{
		ID:        4242,
		FirstName: "Nobody",
		LastName:  "Here",
		Email:     "nobody@example.com",
	}, false)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_Delete_RemovesJoinRows(t *testing.T) {
	users, roles := newTestRepos(t)
	ctx := context.Background()

	ada := mustCreateUser(t, users, roles, "ada@example.com", domain.RoleAdministrator, domain.RoleGuest)

	deleted, err := users.Delete(ctx, ada.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report a removed row")
	}

	joins, err := users.db.NewSelect().
		Model((*domain.UserRole)(nil)).
		Where(`"user" = ?`, ada.ID).
		Count(ctx)
	if err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if joins != 0 {
		t.Fatalf("expected no users_roles rows after delete, found %d", joins)
	}

	if _, err := users.FindByID(ctx, ada.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}

	// Deleting again reports nothing removed.
	deleted, err = users.Delete(ctx, ada.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("second delete must report no removed row")
	}
}

func TestRoleRepository_SeedIsIdempotent(t *testing.T) {
	_, roles := newTestRepos(t)
	ctx := context.Background()

	// newTestRepos already seeded once.
	if err := roles.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	catalog, err := roles.List(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 catalog roles after reseed, got %d", len(catalog))
	}
}
