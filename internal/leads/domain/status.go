// Package domain provides core business rules for the leads bounded context.
package domain

import "slices"

// Lead statuses.
const (
	StatusRdvAConfirmer = "RDV_A_CONFIRMER"
	StatusRdvConfirme   = "RDV_CONFIRME"
	StatusRdvPlanifie   = "RDV_PLANIFIE"
	StatusARappeler     = "A_RAPPELER"
	StatusAbsent        = "ABSENT"
	StatusPresent       = "PRESENT"
)

// DefaultStatus is assigned to every new lead.
const DefaultStatus = StatusRdvAConfirmer

// Appointment types.
const (
	AppointmentPresentiel = "RDV_PRESENTIEL"
	AppointmentTelephone  = "RDV_TELEPHONE"
	AppointmentVisio      = "RDV_VISIO"
)

var statusLabels = map[string]string{
	StatusRdvAConfirmer: "Rendez-vous à confirmer",
	StatusRdvConfirme:   "Rendez-vous confirmé",
	StatusRdvPlanifie:   "Rendez-vous planifié",
	StatusARappeler:     "À rappeler",
	StatusAbsent:        "Absent",
	StatusPresent:       "Présent",
}

var appointmentTypeLabels = map[string]string{
	AppointmentPresentiel: "Rendez-vous présentiel",
	AppointmentTelephone:  "Rendez-vous téléphonique",
	AppointmentVisio:      "Rendez-vous en visio",
}

// Statuses lists every lead status in display order.
var Statuses = []string{
	StatusRdvAConfirmer,
	StatusARappeler,
	StatusRdvConfirme,
	StatusRdvPlanifie,
	StatusAbsent,
	StatusPresent,
}

// DashboardStatuses are the statuses counted on the dashboard.
var DashboardStatuses = []string{StatusRdvAConfirmer, StatusARappeler, StatusRdvConfirme, StatusAbsent}

// ReminderStatuses are the statuses whose appointment still deserves a reminder.
var ReminderStatuses = []string{StatusRdvAConfirmer, StatusRdvConfirme, StatusRdvPlanifie}

// PlannedStatuses count as an appointment happening on the day.
var PlannedStatuses = []string{StatusRdvPlanifie, StatusRdvConfirme}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// ValidAppointmentType reports whether t is a known appointment type.
func ValidAppointmentType(t string) bool {
	_, ok := appointmentTypeLabels[t]
	return ok
}

// StatusLabel returns the French label of a status, or the code itself.
func StatusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}

// AppointmentTypeLabel returns the French label of an appointment type.
func AppointmentTypeLabel(t string) string {
	if l, ok := appointmentTypeLabels[t]; ok {
		return l
	}
	return t
}

// RequiresAppointment reports whether a lead in status s must carry an appointment date.
func RequiresAppointment(s string) bool {
	return s == StatusRdvConfirme || s == StatusRdvPlanifie
}

// TriggersConfirmation reports whether moving to status s sends the appointment
// confirmation email and SMS.
func TriggersConfirmation(s string) bool {
	return s == StatusRdvAConfirmer || s == StatusRdvConfirme
}

// IsReminderStatus reports whether s is one of ReminderStatuses.
func IsReminderStatus(s string) bool {
	return slices.Contains(ReminderStatuses, s)
}
