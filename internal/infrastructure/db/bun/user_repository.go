package bun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/userhub/directory-api/internal/core/domain"
)

// UserRepository persists users over bun/sqlite. Every mutating method runs
// a single transaction so the email-uniqueness scan and the write are atomic
// with respect to concurrent writers; the unique index on users.email is the
// backstop when two transactions interleave anyway.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := new(domain.User)
	err := r.db.NewSelect().
		Model(user).
		Relation("Roles").
		Where("u.email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.NewSelect().
		Model(&users).
		Relation("Roles").
		Order("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*domain.User)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts the user and its role assignments, assigning a new id.
// The duplicate-email scan and the insert share one transaction; a loser of
// the race observes domain.ErrEmailNotAvailable either from the scan or from
// the unique-index violation.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	var created *domain.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := r.emailTaken(ctx, tx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailNotAvailable
		}

		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailNotAvailable
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if err := r.assignRoles(ctx, tx, user.ID, user.Roles); err != nil {
			return err
		}

		created, err = r.findByID(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites names and email. The password column is rewritten only
// when user.PasswordHash is non-empty; role assignments are replaced only
// when replaceRoles is true.
func (r *UserRepository) Update(ctx context.Context, user *domain.User, replaceRoles bool) (*domain.User, error) {
	var updated *domain.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := r.emailTaken(ctx, tx, user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailNotAvailable
		}

		current, err := r.findByID(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		current.FirstName = user.FirstName
		current.LastName = user.LastName
		current.Email = user.Email
		if user.PasswordHash != "" {
			current.PasswordHash = user.PasswordHash
		}

		if _, err := tx.NewUpdate().Model(current).WherePK().Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailNotAvailable
			}
			return fmt.Errorf("update user: %w", err)
		}

		if replaceRoles {
			if _, err := tx.NewDelete().
				Model((*domain.UserRole)(nil)).
				Where(`"user" = ?`, user.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("clear user roles: %w", err)
			}
			if err := r.assignRoles(ctx, tx, user.ID, user.Roles); err != nil {
				return err
			}
		}

		updated, err = r.findByID(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the user and its join rows in one transaction. The explicit
// join delete keeps the cascade independent of the driver's foreign_keys
// pragma.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*domain.UserRole)(nil)).
			Where(`"user" = ?`, id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete user roles: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*domain.User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *UserRepository) findByID(ctx context.Context, db bun.IDB, id int64) (*domain.User, error) {
	user := new(domain.User)
	err := db.NewSelect().
		Model(user).
		Relation("Roles").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// emailTaken scans for another user holding email. excludeID skips the user
// being updated; zero excludes nobody. The comparison is case-sensitive
// exact match (sqlite TEXT equality).
func (r *UserRepository) emailTaken(ctx context.Context, tx bun.Tx, email string, excludeID int64) (bool, error) {
	q := tx.NewSelect().
		Model((*domain.User)(nil)).
		Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check email availability: %w", err)
	}
	return taken, nil
}

func (r *UserRepository) assignRoles(ctx context.Context, tx bun.Tx, userID int64, roles []domain.Role) error {
	if len(roles) == 0 {
		return nil
	}
	joins := make([]domain.UserRole, 0, len(roles))
	for _, role := range roles {
		joins = append(joins, domain.UserRole{UserID: userID, RoleID: role.ID})
	}
	if _, err := tx.NewInsert().Model(&joins).Exec(ctx); err != nil {
		return fmt.Errorf("assign roles: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
