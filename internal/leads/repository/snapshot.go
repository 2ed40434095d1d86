package repository

import "papex_backend/internal/events"

// Snapshot copies the fields notification subscribers need.
func (l Lead) Snapshot() events.LeadSnapshot {
	s := events.LeadSnapshot{
		ID:              l.ID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Phone:           l.Phone,
		AppointmentDate: l.AppointmentDate,
		AppointmentType: l.AppointmentType,
		Status:          l.Status,
	}
	if l.Email != nil {
		s.Email = *l.Email
	}
	if l.DossierStatus != nil {
		s.DossierStatus = *l.DossierStatus
	}
	return s
}
