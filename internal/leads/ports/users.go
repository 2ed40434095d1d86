// Package ports defines consumer-driven interfaces for external dependencies.
// These interfaces are defined in the Leads domain based on what it needs,
// rather than what other domains choose to offer.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// StaffMember is the minimal user data the leads domain needs.
type StaffMember struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// FullName joins first and last name.
func (m StaffMember) FullName() string {
	if m.FirstName == "" || m.LastName == "" {
		return m.FirstName + m.LastName
	}
	return m.FirstName + " " + m.LastName
}

// StaffDirectory resolves active staff accounts.
// The auth domain implements it through an adapter.
type StaffDirectory interface {
	// ActiveStaff returns the active users among ids, restricted to roles when given.
	ActiveStaff(ctx context.Context, ids []uuid.UUID, roles ...string) ([]StaffMember, error)
}
