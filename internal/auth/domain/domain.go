// Package domain holds the auth types shared with other bounded contexts.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Staff roles. A user holds exactly one.
const (
	RoleAdmin      = "ADMIN"
	RoleAccueil    = "ACCUEIL"
	RoleConseiller = "CONSEILLER"
	RoleJuriste    = "JURISTE"
	RoleAvocat     = "AVOCAT"
)

// Roles lists every valid role.
var Roles = []string{RoleAdmin, RoleAccueil, RoleConseiller, RoleJuriste, RoleAvocat}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// Profile represents user information that can be shared with other domains.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
