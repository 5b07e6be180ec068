package bun

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/userhub/directory-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Connect opens the sqlite database, registers the many-to-many join model
// and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*domain.UserRole)(nil))

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return db, nil
}

// CreateSchema creates the users, roles, users_roles and audit_events tables
// when absent. Join-table foreign keys cascade on delete in both directions.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*domain.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*domain.Role)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create roles table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*domain.UserRole)(nil)).
		IfNotExists().
		ForeignKey(`("user") REFERENCES "users" ("id") ON DELETE CASCADE`).
		ForeignKey(`("role") REFERENCES "roles" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create users_roles table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*domain.AuditEvent)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create audit_events table: %w", err)
	}
	return nil
}
