// Package adapter provides implementations of external interfaces that other domains need.
// The auth domain satisfies consumer-driven interfaces declared by other domains.
package adapter

import (
	"context"

	"papex_backend/internal/auth/repository"
	"papex_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// StaffDirectoryAdapter implements leads/ports.StaffDirectory using the auth repository.
type StaffDirectoryAdapter struct {
	repo repository.UserReader
}

// NewStaffDirectoryAdapter creates a new adapter for providing staff info to the leads domain.
func NewStaffDirectoryAdapter(repo repository.UserReader) *StaffDirectoryAdapter {
	return &StaffDirectoryAdapter{repo: repo}
}

// ActiveStaff implements ports.StaffDirectory.
func (a *StaffDirectoryAdapter) ActiveStaff(ctx context.Context, ids []uuid.UUID, roles ...string) ([]ports.StaffMember, error) {
	users, err := a.repo.ListActiveByIDs(ctx, ids, roles)
	if err != nil {
		return nil, err
	}
	out := make([]ports.StaffMember, 0, len(users))
	for _, u := range users {
		out = append(out, ports.StaffMember{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      u.Role,
		})
	}
	return out, nil
}

// Ensure StaffDirectoryAdapter implements ports.StaffDirectory
var _ ports.StaffDirectory = (*StaffDirectoryAdapter)(nil)
