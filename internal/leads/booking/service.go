// Package booking implements public appointment intake: slot reservation and
// lead creation in one transaction.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"papex_backend/internal/events"
	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/repository"
	"papex_backend/platform/apperr"
	"papex_backend/platform/logger"
	"papex_backend/platform/metrics"
)

const (
	msgSlotFull   = "Créneau complet. Veuillez choisir un autre horaire."
	msgEmailTaken = "Cet email est déjà utilisé, veuillez nous contacter."
	msgRequired   = "Champ requis."
	msgBadDate    = "Format de date invalide."
)

// SourcePublic tags leads created from the public booking form.
const SourcePublic = "public"

type Config interface {
	GetSlotDefaultCapacity() int
}

type Service struct {
	repo repository.SlotStore
	bus  events.Bus
	cfg  Config
	log  *logger.Logger
}

func New(repo repository.SlotStore, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, cfg: cfg, log: log}
}

// PublicCreateInput is the raw public form.
type PublicCreateInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	AppointmentDate string
	AppointmentType string
}

// SlotAvailability describes one quota row for a day.
type SlotAvailability struct {
	StartAt   time.Time
	Capacity  int
	Booked    int
	Remaining int
}

// PublicCreate reserves the slot and creates the lead. A full slot yields a
// conflict and no lead row.
func (s *Service) PublicCreate(ctx context.Context, in PublicCreateInput, clientIP string) (repository.Lead, error) {
	params, startAt, err := s.buildParams(ctx, in)
	if err != nil {
		return repository.Lead{}, err
	}

	lead, err := s.repo.ReserveAndCreate(ctx, startAt, s.cfg.GetSlotDefaultCapacity(), params)
	switch {
	case errors.Is(err, repository.ErrSlotFull):
		metrics.RecordSlotReservation(metrics.ResultConflict)
		s.log.SlotRejected(startAt, clientIP)
		return repository.Lead{}, apperr.Conflict(msgSlotFull)
	case errors.Is(err, repository.ErrEmailTaken):
		metrics.RecordSlotReservation(metrics.ResultError)
		return repository.Lead{}, emailTaken()
	case err != nil:
		metrics.RecordSlotReservation(metrics.ResultError)
		s.log.DatabaseError("reserve slot", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "réservation impossible", err)
	}

	metrics.RecordSlotReservation(metrics.ResultOK)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		Lead:      lead.Snapshot(),
		Source:    SourcePublic,
	})
	return lead, nil
}

func (s *Service) buildParams(ctx context.Context, in PublicCreateInput) (repository.CreateLeadParams, time.Time, error) {
	fields := apperr.FieldErrors{}

	firstName := domain.Capitalize(in.FirstName)
	lastName := domain.Capitalize(in.LastName)
	phone := domain.NormalizePhone(in.Phone)
	if firstName == "" {
		fields.Add("first_name", msgRequired)
	}
	if lastName == "" {
		fields.Add("last_name", msgRequired)
	}
	if phone == "" {
		fields.Add("phone", msgRequired)
	}

	var appointment time.Time
	if strings.TrimSpace(in.AppointmentDate) == "" {
		fields.Add("appointment_date", msgRequired)
	} else if t, err := domain.ParseAppointment(in.AppointmentDate); err != nil {
		fields.Add("appointment_date", msgBadDate)
	} else {
		appointment = domain.SlotStart(t)
	}

	appointmentType := strings.TrimSpace(in.AppointmentType)
	if appointmentType == "" {
		appointmentType = domain.AppointmentPresentiel
	} else if !domain.ValidAppointmentType(appointmentType) {
		fields.Add("appointment_type", "Valeur invalide.")
	}

	var email *string
	if e := domain.NormalizeEmail(in.Email); e != "" {
		email = &e
	}

	if !fields.Empty() {
		return repository.CreateLeadParams{}, time.Time{}, apperr.Fields(fields)
	}

	if email != nil {
		taken, err := s.repo.EmailInUse(ctx, *email, 0)
		if err != nil {
			return repository.CreateLeadParams{}, time.Time{}, apperr.Wrap(apperr.KindInternal, "vérification e-mail", err)
		}
		if taken {
			return repository.CreateLeadParams{}, time.Time{}, emailTaken()
		}
	}

	return repository.CreateLeadParams{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Phone:           phone,
		AppointmentDate: &appointment,
		AppointmentType: appointmentType,
		Status:          domain.DefaultStatus,
	}, appointment, nil
}

// PublicSlots lists the quota rows of a Paris calendar day.
func (s *Service) PublicSlots(ctx context.Context, day string) ([]SlotAvailability, error) {
	if strings.TrimSpace(day) == "" {
		return nil, apperr.BadRequest("Le paramètre 'date' est requis (YYYY-MM-DD).")
	}
	d, err := domain.ParseDay(day)
	if err != nil {
		return nil, apperr.BadRequest(msgBadDate)
	}
	from, to := domain.DayBounds(d)

	slots, err := s.repo.ListSlots(ctx, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "liste des créneaux", err)
	}
	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotAvailability{
			StartAt:   slot.StartAt,
			Capacity:  slot.Capacity,
			Booked:    slot.Booked,
			Remaining: slot.Remaining(),
		})
	}
	return out, nil
}

// SetCapacity changes the capacity of the slot starting at startAt.
func (s *Service) SetCapacity(ctx context.Context, startAt string, capacity int) (SlotAvailability, error) {
	if capacity < 0 {
		return SlotAvailability{}, apperr.Fields(apperr.FieldErrors{"capacity": {"Doit être supérieur ou égal à 0."}})
	}
	t, err := domain.ParseAppointment(startAt)
	if err != nil {
		return SlotAvailability{}, apperr.Fields(apperr.FieldErrors{"start_at": {msgBadDate}})
	}

	slot, err := s.repo.SetCapacity(ctx, domain.SlotStart(t), capacity)
	if errors.Is(err, repository.ErrCapacityBelowBooked) {
		return SlotAvailability{}, apperr.Conflict("La capacité ne peut pas être inférieure au nombre de réservations.")
	}
	if err != nil {
		return SlotAvailability{}, apperr.Wrap(apperr.KindInternal, "mise à jour du créneau", err)
	}
	return SlotAvailability{StartAt: slot.StartAt, Capacity: slot.Capacity, Booked: slot.Booked, Remaining: slot.Remaining()}, nil
}

func emailTaken() error {
	return apperr.Fields(apperr.FieldErrors{"email": {msgEmailTaken}})
}
