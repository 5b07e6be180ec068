package service

import "github.com/userhub/directory-api/internal/core/domain"

// Access decisions are pure functions over the verified token identity and
// the operation's target. They never touch persistence: the embedded role
// snapshot is trusted as-is, so role edits made after token issuance take
// effect only on re-login. A nil caller is an anonymous request; a request
// whose token failed verification is treated the same way.

// IsAdministrator reports whether the caller's role snapshot contains the
// Administrator role.
func IsAdministrator(caller *domain.Identity) bool {
	return caller != nil && caller.HasRole(domain.RoleAdministrator)
}

// CanListUsers allows only administrators.
func CanListUsers(caller *domain.Identity) bool {
	return IsAdministrator(caller)
}

// CanReadUser allows administrators and the user themselves.
func CanReadUser(caller *domain.Identity, targetID int64) bool {
	if caller == nil {
		return false
	}
	return IsAdministrator(caller) || caller.ID == targetID
}

// CanCreateUser allows anyone, anonymous included, unless the request grants
// the Administrator role; that requires an administrator caller.
func CanCreateUser(caller *domain.Identity, requestedRoles []string) bool {
	if IsAdministrator(caller) {
		return true
	}
	return !containsAdministrator(requestedRoles)
}

// CanUpdateUser allows administrators, and the user themselves as long as
// they do not grant the Administrator role.
func CanUpdateUser(caller *domain.Identity, targetID int64, requestedRoles []string) bool {
	if caller == nil {
		return false
	}
	if IsAdministrator(caller) {
		return true
	}
	return caller.ID == targetID && !containsAdministrator(requestedRoles)
}

// CanDeleteUser allows administrators and the user themselves.
func CanDeleteUser(caller *domain.Identity, targetID int64) bool {
	if caller == nil {
		return false
	}
	return IsAdministrator(caller) || caller.ID == targetID
}

func containsAdministrator(names []string) bool {
	for _, n := range names {
		if n == domain.RoleAdministrator {
			return true
		}
	}
	return false
}
