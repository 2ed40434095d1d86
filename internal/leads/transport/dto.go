package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type PublicCreateLeadRequest struct {
	FirstName       string `json:"first_name" validate:"required,notblank,max=100"`
	LastName        string `json:"last_name" validate:"required,notblank,max=100"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone           string `json:"phone" validate:"required,notblank,min=5,max=30"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	AppointmentType string `json:"appointment_type,omitempty" validate:"omitempty,oneof=RDV_PRESENTIEL RDV_TELEPHONE RDV_VISIO"`
}

type CreateLeadRequest struct {
	FirstName       string `json:"first_name" validate:"required,notblank,max=100"`
	LastName        string `json:"last_name" validate:"required,notblank,max=100"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone           string `json:"phone" validate:"required,notblank,min=5,max=30"`
	AppointmentDate string `json:"appointment_date,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty" validate:"omitempty,oneof=RDV_PRESENTIEL RDV_TELEPHONE RDV_VISIO"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=RDV_A_CONFIRMER RDV_CONFIRME RDV_PLANIFIE A_RAPPELER ABSENT PRESENT"`
	DossierStatus   string `json:"dossier_status,omitempty" validate:"max=100"`
}

type UpdateLeadRequest struct {
	FirstName       *string        `json:"first_name,omitempty" validate:"omitempty,notblank,max=100"`
	LastName        *string        `json:"last_name,omitempty" validate:"omitempty,notblank,max=100"`
	Email           *string        `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone           *string        `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	AppointmentDate OptionalString `json:"appointment_date,omitempty" validate:"-"`
	AppointmentType *string        `json:"appointment_type,omitempty" validate:"omitempty,oneof=RDV_PRESENTIEL RDV_TELEPHONE RDV_VISIO"`
	Status          *string        `json:"status,omitempty" validate:"omitempty,oneof=RDV_A_CONFIRMER RDV_CONFIRME RDV_PLANIFIE A_RAPPELER ABSENT PRESENT"`
	DossierStatus   OptionalString `json:"dossier_status,omitempty" validate:"-"`
}

// AssignmentRequest toggles the caller on a lead, or lets an admin edit the list.
type AssignmentRequest struct {
	Action   string      `json:"action,omitempty"`
	Assign   []uuid.UUID `json:"assign,omitempty"`
	Unassign []uuid.UUID `json:"unassign,omitempty"`
}

type AssignJuristesRequest struct {
	Assign   []uuid.UUID `json:"assign,omitempty"`
	Unassign []uuid.UUID `json:"unassign,omitempty"`
}

type SlotCapacityRequest struct {
	StartAt  string `json:"start_at" validate:"required"`
	Capacity *int   `json:"capacity" validate:"required,gte=0,lte=1000"`
}

// ListLeadsRequest is bound from the query string.
type ListLeadsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Status    string `form:"status"`
	Date      string `form:"date"`
	DateField string `form:"date_field" validate:"omitempty,oneof=created_at appointment_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

type SearchLeadsRequest struct {
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	ApptFrom      string `form:"appt_from"`
	ApptTo        string `form:"appt_to"`
	Status        string `form:"status"`
	StatusCode    string `form:"status_code"`
	DossierStatus string `form:"dossier_status"`
	DossierCode   string `form:"dossier_code"`
	HasJurist     string `form:"has_jurist"`
	HasConseiller string `form:"has_conseiller"`
	Ordering      string `form:"ordering"`
	Page          string `form:"page"`
	PageSize      string `form:"page_size"`
}

// Response DTOs
type StaffResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
}

type LeadResponse struct {
	ID                     int64           `json:"id"`
	FirstName              string          `json:"first_name"`
	LastName               string          `json:"last_name"`
	Email                  *string         `json:"email"`
	Phone                  string          `json:"phone"`
	AppointmentDate        *time.Time      `json:"appointment_date"`
	AppointmentDateDisplay string          `json:"appointment_date_display"`
	AppointmentType        string          `json:"appointment_type"`
	AppointmentTypeDisplay string          `json:"appointment_type_display"`
	Status                 string          `json:"status"`
	StatusDisplay          string          `json:"status_display"`
	DossierStatus          *string         `json:"dossier_status"`
	AssignedTo             []StaffResponse `json:"assigned_to"`
	Jurists                []StaffResponse `json:"jurists"`
	LastReminderSent       *time.Time      `json:"last_reminder_sent"`
	LastReminderDisplay    string          `json:"last_reminder_sent_display,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type LeadListResponse struct {
	Count    int            `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Results  []LeadResponse `json:"results"`
}

type SearchItem struct {
	LeadResponse
	HasConseiller bool `json:"has_conseiller"`
	HasJurist     bool `json:"has_jurist"`
}

type SearchKPI struct {
	RdvToday       int `json:"rdv_today"`
	ContractsToday int `json:"contracts_today"`
}

type SearchResponse struct {
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Ordering string       `json:"ordering"`
	Items    []SearchItem `json:"items"`
	KPI      SearchKPI    `json:"kpi"`
}

type SlotResponse struct {
	StartAt      time.Time `json:"start_at"`
	StartDisplay string    `json:"start_display"`
	Capacity     int       `json:"capacity"`
	Booked       int       `json:"booked"`
	Remaining    int       `json:"remaining"`
}

type SlotListResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}
