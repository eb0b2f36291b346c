// Package authz holds the role authorization decision. It is a pure function
// over the route's required roles and the principal's role; route policy is
// declared where routes are registered, not discovered by reflection.
package authz

import "github.com/userhub/identity-service/internal/core/domain"

// Decide reports whether a principal with the given role may access a route
// requiring one of the listed roles. An empty requirement means the route is
// open to any authenticated principal.
func Decide(required []domain.Role, role domain.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
