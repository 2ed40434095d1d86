package sse

import (
	"context"

	"papex_backend/internal/events"
	apphttp "papex_backend/internal/http"
)

// Module mounts the staff event stream and feeds it from the event bus.
type Module struct {
	svc *Service
}

func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

func (m *Module) Name() string { return "events" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events", m.svc.Handler)
}

// RegisterHandlers subscribes the stream to lead and client changes.
func (m *Module) RegisterHandlers(bus events.Bus) {
	for _, name := range []string{
		events.LeadCreated{}.EventName(),
		events.LeadStatusChanged{}.EventName(),
		events.LeadDossierStatusChanged{}.EventName(),
		events.JuristAssigned{}.EventName(),
		events.LeadDeleted{}.EventName(),
		events.ClientAccountCreated{}.EventName(),
		events.ClientFileUpdated{}.EventName(),
	} {
		bus.Subscribe(name, m)
	}
}

func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		m.svc.Publish(Event{Type: EventLeadCreated, LeadID: e.Lead.ID, Status: e.Lead.Status})
	case events.LeadStatusChanged:
		m.svc.Publish(Event{Type: EventLeadUpdated, LeadID: e.Lead.ID, Status: e.Lead.Status})
	case events.LeadDossierStatusChanged:
		m.svc.Publish(Event{Type: EventLeadUpdated, LeadID: e.Lead.ID, Status: e.Lead.Status, Change: "dossier_status"})
	case events.JuristAssigned:
		m.svc.Publish(Event{Type: EventLeadUpdated, LeadID: e.Lead.ID, Status: e.Lead.Status, Change: "jurists"})
	case events.LeadDeleted:
		m.svc.Publish(Event{Type: EventLeadDeleted, LeadID: e.LeadID})
	case events.ClientAccountCreated:
		m.svc.Publish(Event{Type: EventClientUpdated, LeadID: e.Lead.ID, ClientID: e.ClientID, Change: "created"})
	case events.ClientFileUpdated:
		m.svc.Publish(Event{Type: EventClientUpdated, LeadID: e.LeadID, ClientID: e.ClientID, Change: e.Change})
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)
