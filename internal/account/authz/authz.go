// Package authz is the pure authorization gate for destructive account
// operations. It never touches a store; callers evaluate it strictly before
// the first write so that a denial means zero writes happened.
package authz

import "innkeeper/pkg/domain"

// CanDelete reports whether an actor with actorRole may delete an account
// holding targetRole.
//
//	admin        → anyone
//	manager      → receptionist only
//	receptionist → no one
//
// Any pair involving a role outside the closed set is denied.
func CanDelete(actorRole, targetRole domain.Role) bool {
	if !actorRole.IsValid() || !targetRole.IsValid() {
		return false
	}
	// Admins may also delete their peers; everyone else needs strictly
	// higher rank than the target.
	if actorRole == domain.RoleAdmin {
		return true
	}
	return actorRole.Outranks(targetRole)
}

// CanProvision reports whether an actor may create new accounts. Only
// admins provision staff.
func CanProvision(actorRole domain.Role) bool {
	return actorRole == domain.RoleAdmin
}
