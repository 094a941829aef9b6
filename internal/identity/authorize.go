package identity

import "tour-booking/internal/data/entity"

// Authorized reports whether the principal holds one of the given roles.
// A nil principal is never authorized, and an empty role list authorizes
// nobody: every call site must say which roles it admits.
func Authorized(p *Principal, roles ...entity.UserRole) bool {
	if p == nil || len(roles) == 0 {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
