package domain

import (
	"errors"

	"github.com/uptrace/bun"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrEmailNotAvailable = errors.New("email not available")
var ErrUserNotFound = errors.New("user not found")
var ErrUnauthorized = errors.New("unauthorized")

// User is the directory's aggregate root. The password hash is never
// serialized outward; every response path relies on the `json:"-"` tag.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `json:"id" bun:"id,pk,autoincrement"`
	FirstName    string `json:"firstName" bun:"first_name,notnull"`
	LastName     string `json:"lastName" bun:"last_name,notnull"`
	Email        string `json:"email" bun:"email,notnull,unique"`
	PasswordHash string `json:"-" bun:"password,notnull"`
	Roles        []Role `json:"roles" bun:"m2m:users_roles,join:User=Role"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in persisted order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Identity is the snapshot of an authenticated user embedded in a bearer
// token. It carries role names only; it is never persisted and may go stale
// relative to later role edits until the token expires.
type Identity struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// HasRole reports whether the embedded role snapshot contains name.
func (i *Identity) HasRole(name string) bool {
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Authentication is the login response payload. Expiration is the token's
// expiry instant in epoch milliseconds.
type Authentication struct {
	Token      string `json:"token"`
	Type       string `json:"type"`
	Expiration int64  `json:"expiration"`
}
