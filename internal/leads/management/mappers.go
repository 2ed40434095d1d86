package management

import (
	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/transport"
)

func toStaffResponses(refs []repository.StaffRef) []transport.StaffResponse {
	out := make([]transport.StaffResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, transport.StaffResponse{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Role:      r.Role,
		})
	}
	return out
}

// ToLeadResponse maps a stored lead to its API shape with French display labels.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                     lead.ID,
		FirstName:              lead.FirstName,
		LastName:               lead.LastName,
		Email:                  lead.Email,
		Phone:                  lead.Phone,
		AppointmentDate:        lead.AppointmentDate,
		AppointmentDateDisplay: domain.FormatDisplay(lead.AppointmentDate),
		AppointmentType:        lead.AppointmentType,
		AppointmentTypeDisplay: domain.AppointmentTypeLabel(lead.AppointmentType),
		Status:                 lead.Status,
		StatusDisplay:          domain.StatusLabel(lead.Status),
		DossierStatus:          lead.DossierStatus,
		AssignedTo:             toStaffResponses(lead.Assignees),
		Jurists:                toStaffResponses(lead.Jurists),
		LastReminderSent:       lead.LastReminderSent,
		LastReminderDisplay:    domain.FormatDisplay(lead.LastReminderSent),
		CreatedAt:              lead.CreatedAt,
		UpdatedAt:              lead.UpdatedAt,
	}
}

func toLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

func toSearchItems(leads []repository.Lead) []transport.SearchItem {
	out := make([]transport.SearchItem, 0, len(leads))
	for _, l := range leads {
		out = append(out, transport.SearchItem{
			LeadResponse:  ToLeadResponse(l),
			HasConseiller: len(l.Assignees) > 0,
			HasJurist:     len(l.Jurists) > 0,
		})
	}
	return out
}
