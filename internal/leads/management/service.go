// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, deleting and assigning leads.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"papex_backend/internal/events"
	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/ports"
	"papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/transport"
	"papex_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// SourceStaff tags leads entered by the back office.
const SourceStaff = "staff"

const (
	msgLeadNotFound = "Lead introuvable."
	msgEmailTaken   = "Cet email est déjà utilisé, veuillez nous contacter."
	msgForbidden    = "Accès interdit."
	msgAdminOnly    = "Admin requis."
	msgBadAction    = "Action non autorisée."
	msgApptRequired = "Une date de rendez-vous est requise pour ce statut."
	msgBadDate      = "Format de date invalide."
)

// Actor is the staff member performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo  Repository
	staff ports.StaffDirectory
	bus   events.Bus
	now   func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, staff ports.StaffDirectory, bus events.Bus) *Service {
	return &Service{repo: repo, staff: staff, bus: bus, now: time.Now}
}

// Create registers a lead from the back office. No slot is reserved.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		FirstName:       domain.Capitalize(req.FirstName),
		LastName:        domain.Capitalize(req.LastName),
		Phone:           domain.NormalizePhone(req.Phone),
		AppointmentType: req.AppointmentType,
		Status:          req.Status,
	}
	if params.AppointmentType == "" {
		params.AppointmentType = domain.AppointmentPresentiel
	}
	if params.Status == "" {
		params.Status = domain.DefaultStatus
	}
	if d := strings.TrimSpace(req.DossierStatus); d != "" {
		params.DossierStatus = &d
	}

	if strings.TrimSpace(req.AppointmentDate) != "" {
		t, err := domain.ParseAppointment(req.AppointmentDate)
		if err != nil {
			return transport.LeadResponse{}, fieldError("appointment_date", msgBadDate)
		}
		t = domain.SlotStart(t)
		params.AppointmentDate = &t
	}
	if domain.RequiresAppointment(params.Status) && params.AppointmentDate == nil {
		return transport.LeadResponse{}, fieldError("appointment_date", msgApptRequired)
	}

	if email := domain.NormalizeEmail(req.Email); email != "" {
		if err := s.ensureEmailFree(ctx, email, 0); err != nil {
			return transport.LeadResponse{}, err
		}
		params.Email = &email
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, mapWriteErr(err)
	}
	lead.Assignees = []repository.StaffRef{}
	lead.Jurists = []repository.StaffRef{}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		Lead:      lead.Snapshot(),
		Source:    SourceStaff,
	})
	return ToLeadResponse(lead), nil
}

// GetByID retrieves a lead by ID. Lawyers only see leads they are linked to.
func (s *Service) GetByID(ctx context.Context, id int64, actor Actor) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if actor.Role == "AVOCAT" && !linkedTo(lead, actor.ID) {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	return ToLeadResponse(lead), nil
}

// Update applies a partial update and publishes the events the change implies.
func (s *Service) Update(ctx context.Context, id int64, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	params := repository.UpdateLeadParams{
		AppointmentType: req.AppointmentType,
		Status:          req.Status,
	}
	if req.FirstName != nil {
		v := domain.Capitalize(*req.FirstName)
		params.FirstName = &v
	}
	if req.LastName != nil {
		v := domain.Capitalize(*req.LastName)
		params.LastName = &v
	}
	if req.Phone != nil {
		v := domain.NormalizePhone(*req.Phone)
		params.Phone = &v
	}
	if req.Email != nil {
		if v := domain.NormalizeEmail(*req.Email); v != "" {
			if err := s.ensureEmailFree(ctx, v, id); err != nil {
				return transport.LeadResponse{}, err
			}
			params.Email = &v
		}
	}

	appointment := current.AppointmentDate
	if req.AppointmentDate.Clear() {
		params.ClearAppointment = true
		appointment = nil
	} else if req.AppointmentDate.Value != nil {
		t, err := domain.ParseAppointment(*req.AppointmentDate.Value)
		if err != nil {
			return transport.LeadResponse{}, fieldError("appointment_date", msgBadDate)
		}
		t = domain.SlotStart(t)
		params.AppointmentDate = &t
		appointment = &t
	}

	status := current.Status
	if req.Status != nil {
		status = *req.Status
	}
	if domain.RequiresAppointment(status) && appointment == nil {
		return transport.LeadResponse{}, fieldError("appointment_date", msgApptRequired)
	}

	if req.DossierStatus.Clear() {
		params.ClearDossierStatus = true
	} else if req.DossierStatus.Value != nil {
		v := strings.TrimSpace(*req.DossierStatus.Value)
		params.DossierStatus = &v
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.LeadResponse{}, mapWriteErr(err)
	}

	s.publishChanges(ctx, current, updated)
	return ToLeadResponse(updated), nil
}

func (s *Service) publishChanges(ctx context.Context, before, after repository.Lead) {
	appointmentChanged := !sameTime(before.AppointmentDate, after.AppointmentDate)
	if before.Status != after.Status || appointmentChanged {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:          events.NewBaseEvent(),
			Lead:               after.Snapshot(),
			PreviousStatus:     before.Status,
			AppointmentChanged: appointmentChanged,
		})
	}

	prev, next := deref(before.DossierStatus), deref(after.DossierStatus)
	if prev != next && next != "" {
		s.bus.Publish(ctx, events.LeadDossierStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			Lead:      after.Snapshot(),
			Previous:  prev,
		})
	}
}

// Delete removes a lead and its staff links.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgLeadNotFound)
		}
		return err
	}
	s.bus.Publish(ctx, events.LeadDeleted{BaseEvent: events.NewBaseEvent(), LeadID: id})
	return nil
}

// List returns a page of leads, newest first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest, actor Actor) (transport.LeadListResponse, error) {
	params := repository.ListParams{
		Search:    req.Search,
		Status:    req.Status,
		DateField: req.DateField,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if params.Status != "" && params.Status != "TOUS" && !domain.ValidStatus(params.Status) {
		return transport.LeadListResponse{}, fieldError("status", "Statut invalide.")
	}
	if strings.TrimSpace(req.Date) != "" {
		day, err := domain.ParseDay(req.Date)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest(msgBadDate)
		}
		from, to := domain.DayBounds(day)
		params.DayStart, params.DayEnd = &from, &to
	}
	if actor.Role == "AVOCAT" {
		id := actor.ID
		params.RestrictTo = &id
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	page, size := pageOrDefault(req.Page, req.PageSize)
	return transport.LeadListResponse{
		Count:    result.Total,
		Page:     page,
		PageSize: size,
		Results:  toLeadResponses(result.Items),
	}, nil
}

// CountByStatus returns the dashboard counters.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx, domain.DashboardStatuses)
}

// RdvByDate lists confirmed appointments of a Paris calendar day.
func (s *Service) RdvByDate(ctx context.Context, date string) ([]transport.LeadResponse, error) {
	if strings.TrimSpace(date) == "" {
		return nil, apperr.BadRequest("Le paramètre 'date' est requis (YYYY-MM-DD).")
	}
	day, err := domain.ParseDay(date)
	if err != nil {
		return nil, apperr.BadRequest(msgBadDate)
	}
	from, to := domain.DayBounds(day)
	leads, err := s.repo.AppointmentsBetween(ctx, domain.StatusRdvConfirme, from, to)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

// Assignment adds or removes advisors. "assign" and "unassign" toggle the
// caller; any other admin request applies the assign/unassign id lists.
func (s *Service) Assignment(ctx context.Context, id int64, req transport.AssignmentRequest, actor Actor) (transport.LeadResponse, error) {
	if actor.Role != "ADMIN" && actor.Role != "CONSEILLER" {
		return transport.LeadResponse{}, apperr.Forbidden(msgForbidden)
	}
	if _, err := s.load(ctx, id); err != nil {
		return transport.LeadResponse{}, err
	}

	switch {
	case req.Action == "assign":
		if err := s.repo.AddAssignees(ctx, id, []uuid.UUID{actor.ID}); err != nil {
			return transport.LeadResponse{}, err
		}
	case req.Action == "unassign":
		if err := s.repo.RemoveAssignees(ctx, id, []uuid.UUID{actor.ID}); err != nil {
			return transport.LeadResponse{}, err
		}
	case actor.Role == "ADMIN":
		if len(req.Assign) > 0 {
			active, err := s.staff.ActiveStaff(ctx, req.Assign)
			if err != nil {
				return transport.LeadResponse{}, err
			}
			if err := s.repo.AddAssignees(ctx, id, staffIDs(active)); err != nil {
				return transport.LeadResponse{}, err
			}
		}
		if len(req.Unassign) > 0 {
			if err := s.repo.RemoveAssignees(ctx, id, req.Unassign); err != nil {
				return transport.LeadResponse{}, err
			}
		}
	default:
		return transport.LeadResponse{}, apperr.BadRequest(msgBadAction)
	}

	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// AssignJuristes edits the jurists of a lead. The first newly linked jurist is
// announced to the client when the lead has an email.
func (s *Service) AssignJuristes(ctx context.Context, id int64, req transport.AssignJuristesRequest, actor Actor) (transport.LeadResponse, error) {
	if actor.Role != "ADMIN" {
		return transport.LeadResponse{}, apperr.Forbidden(msgAdminOnly)
	}
	if _, err := s.load(ctx, id); err != nil {
		return transport.LeadResponse{}, err
	}

	var added []uuid.UUID
	var active []ports.StaffMember
	if len(req.Assign) > 0 {
		var err error
		active, err = s.staff.ActiveStaff(ctx, req.Assign, "JURISTE", "AVOCAT")
		if err != nil {
			return transport.LeadResponse{}, err
		}
		added, err = s.repo.AddJurists(ctx, id, staffIDs(active))
		if err != nil {
			return transport.LeadResponse{}, err
		}
	}
	if err := s.repo.RemoveJurists(ctx, id, req.Unassign); err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if first, ok := firstAdded(req.Assign, added, active); ok && lead.Email != nil {
		s.bus.Publish(ctx, events.JuristAssigned{
			BaseEvent:  events.NewBaseEvent(),
			Lead:       lead.Snapshot(),
			JuristName: first.FullName(),
		})
	}
	return ToLeadResponse(lead), nil
}

// SendFormulaire asks for the intake form email to be sent to the lead.
func (s *Service) SendFormulaire(ctx context.Context, id int64) error {
	lead, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if lead.Email == nil || *lead.Email == "" {
		return apperr.BadRequest("Ce lead n'a pas d'adresse e-mail.")
	}
	s.bus.Publish(ctx, events.FormulaireRequested{
		BaseEvent: events.NewBaseEvent(),
		Lead:      lead.Snapshot(),
	})
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	return lead, err
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.EmailInUse(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fieldError("email", msgEmailTaken)
	}
	return nil
}

func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		return fieldError("email", msgEmailTaken)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgLeadNotFound)
	default:
		return err
	}
}

func fieldError(field, msg string) error {
	return apperr.Fields(apperr.FieldErrors{field: {msg}})
}

func linkedTo(lead repository.Lead, userID uuid.UUID) bool {
	for _, s := range lead.Assignees {
		if s.ID == userID {
			return true
		}
	}
	for _, s := range lead.Jurists {
		if s.ID == userID {
			return true
		}
	}
	return false
}

func staffIDs(members []ports.StaffMember) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

// firstAdded returns the first requested jurist that was not linked before.
func firstAdded(requested, added []uuid.UUID, active []ports.StaffMember) (ports.StaffMember, bool) {
	isNew := make(map[uuid.UUID]bool, len(added))
	for _, id := range added {
		isNew[id] = true
	}
	byID := make(map[uuid.UUID]ports.StaffMember, len(active))
	for _, m := range active {
		byID[m.ID] = m
	}
	for _, id := range requested {
		if isNew[id] {
			return byID[id], true
		}
	}
	return ports.StaffMember{}, false
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func pageOrDefault(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}
