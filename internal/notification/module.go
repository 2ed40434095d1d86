// Package notification turns domain events into lead emails and SMS.
// Domain modules publish events; this module decides what each lead receives
// and on which channel, then queues or sends it.
package notification

import (
	"context"

	"papex_backend/internal/events"
	"papex_backend/internal/leads/domain"
	"papex_backend/platform/logger"
)

// Sink receives the messages produced by event handlers.
type Sink interface {
	Dispatch(ctx context.Context, msg Message)
}

type Module struct {
	sink Sink
	log  *logger.Logger
}

func New(sink Sink, log *logger.Logger) *Module {
	return &Module{sink: sink, log: log}
}

func (m *Module) Name() string { return "notification" }

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
	bus.Subscribe(events.LeadDossierStatusChanged{}.EventName(), m)
	bus.Subscribe(events.JuristAssigned{}.EventName(), m)
	bus.Subscribe(events.FormulaireRequested{}.EventName(), m)
	bus.Subscribe(events.ClientAccountCreated{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		m.handleAppointmentStatus(ctx, e.Lead)
	case events.LeadStatusChanged:
		m.handleAppointmentStatus(ctx, e.Lead)
	case events.LeadDossierStatusChanged:
		if e.Lead.DossierStatus != "" {
			m.email(ctx, Message{Kind: KindDossierStatus, Lead: e.Lead})
		}
	case events.JuristAssigned:
		m.email(ctx, Message{Kind: KindJuristAssigned, Lead: e.Lead, JuristName: e.JuristName})
	case events.FormulaireRequested:
		m.email(ctx, Message{Kind: KindFormulaire, Lead: e.Lead})
	case events.ClientAccountCreated:
		m.email(ctx, Message{Kind: KindAccountCreated, Lead: e.Lead, ClientID: e.ClientID})
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
	}
	return nil
}

// handleAppointmentStatus sends the confirmation on both channels for the
// statuses that expect one, and the planned email for RDV_PLANIFIE.
func (m *Module) handleAppointmentStatus(ctx context.Context, lead events.LeadSnapshot) {
	if lead.AppointmentDate == nil {
		return
	}
	switch {
	case domain.TriggersConfirmation(lead.Status):
		m.email(ctx, Message{Kind: KindConfirmation, Lead: lead})
		if lead.Phone != "" {
			m.sink.Dispatch(ctx, Message{Kind: KindConfirmation, Channel: ChannelSMS, Lead: lead})
		}
	case lead.Status == domain.StatusRdvPlanifie:
		m.email(ctx, Message{Kind: KindPlanned, Lead: lead})
	}
}

func (m *Module) email(ctx context.Context, msg Message) {
	if msg.Lead.Email == "" {
		return
	}
	msg.Channel = ChannelEmail
	m.sink.Dispatch(ctx, msg)
}
