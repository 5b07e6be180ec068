package domain

import (
	"errors"

	"github.com/uptrace/bun"
)

// The role catalog is fixed: it is seeded once at boot and read-only after.
const (
	RoleAdministrator = "Administrator"
	RoleGuest         = "Guest"
)

var ErrRoleNotFound = errors.New("role not found")

// Role is a named entry in the fixed catalog.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID   int64  `json:"id" bun:"id,pk,autoincrement"`
	Name string `json:"name" bun:"name,notnull,unique"`
}

// UserRole is the users/roles join row. It carries no payload beyond the two
// foreign keys; deleting either side removes the row.
type UserRole struct {
	bun.BaseModel `bun:"table:users_roles,alias:ur"`

	UserID int64 `bun:"user,pk"`
	User   *User `bun:"rel:belongs-to,join:user=id"`
	RoleID int64 `bun:"role,pk"`
	Role   *Role `bun:"rel:belongs-to,join:role=id"`
}
