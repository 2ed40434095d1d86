// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"papex_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadSnapshot is the part of a lead that notification handlers need.
// Events carry it so subscribers never have to read the lead back.
type LeadSnapshot struct {
	ID              int64      `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	AppointmentDate *time.Time `json:"appointmentDate,omitempty"`
	AppointmentType string     `json:"appointmentType,omitempty"`
	Status          string     `json:"status"`
	DossierStatus   string     `json:"dossierStatus,omitempty"`
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published once a lead row is committed, from the public
// booking form or from staff intake.
type LeadCreated struct {
	BaseEvent
	Lead   LeadSnapshot `json:"lead"`
	Source string       `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when staff change the status or move the appointment.
type LeadStatusChanged struct {
	BaseEvent
	Lead               LeadSnapshot `json:"lead"`
	PreviousStatus     string       `json:"previousStatus"`
	AppointmentChanged bool         `json:"appointmentChanged"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadDossierStatusChanged is published when the free-text dossier label changes.
type LeadDossierStatusChanged struct {
	BaseEvent
	Lead     LeadSnapshot `json:"lead"`
	Previous string       `json:"previous"`
}

func (e LeadDossierStatusChanged) EventName() string { return "leads.dossier_status.changed" }

// JuristAssigned is published for the first jurist newly attached to a lead.
type JuristAssigned struct {
	BaseEvent
	Lead       LeadSnapshot `json:"lead"`
	JuristName string       `json:"juristName"`
}

func (e JuristAssigned) EventName() string { return "leads.jurist.assigned" }

// FormulaireRequested is published when staff ask for the intake form to be sent.
type FormulaireRequested struct {
	BaseEvent
	Lead LeadSnapshot `json:"lead"`
}

func (e FormulaireRequested) EventName() string { return "leads.formulaire.requested" }

// LeadDeleted is published after a lead row is removed.
type LeadDeleted struct {
	BaseEvent
	LeadID int64 `json:"leadId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// =============================================================================
// Clients Domain Events
// =============================================================================

// ClientAccountCreated is published the first time a client file is opened for a lead.
type ClientAccountCreated struct {
	BaseEvent
	ClientID int64        `json:"clientId"`
	Lead     LeadSnapshot `json:"lead"`
}

func (e ClientAccountCreated) EventName() string { return "clients.account.created" }

// ClientFileUpdated is published when a contract, receipt or document is added
// to a client file.
type ClientFileUpdated struct {
	BaseEvent
	ClientID int64  `json:"clientId"`
	LeadID   int64  `json:"leadId"`
	Change   string `json:"change"`
}

func (e ClientFileUpdated) EventName() string { return "clients.file.updated" }
