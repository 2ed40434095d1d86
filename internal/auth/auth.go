// Package auth provides authentication and authorization functionality.
// This file defines the public API of the auth bounded context.
package auth

import "papex_backend/internal/auth/domain"

// Profile represents user information that can be shared with other domains.
type Profile = domain.Profile

// Role constants re-exported for callers that only import the module.
const (
	RoleAdmin      = domain.RoleAdmin
	RoleAccueil    = domain.RoleAccueil
	RoleConseiller = domain.RoleConseiller
	RoleJuriste    = domain.RoleJuriste
	RoleAvocat     = domain.RoleAvocat
)
