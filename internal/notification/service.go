package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"papex_backend/internal/email"
	"papex_backend/internal/events"
	"papex_backend/internal/leads/domain"
	"papex_backend/internal/sms"
	"papex_backend/platform/branding"
	"papex_backend/platform/metrics"
)

// ErrSkipped marks a message that has no recipient on its channel.
var ErrSkipped = errors.New("notification skipped")

type Config interface {
	GetAppBaseURL() string
	GetFormulaireURL() string
}

// Service renders and sends messages synchronously.
type Service struct {
	email    email.Sender
	sms      sms.Sender
	composer *sms.Composer
	profile  branding.Profile
	cfg      Config
}

func NewService(emailSender email.Sender, smsSender sms.Sender, profile branding.Profile, cfg Config) *Service {
	return &Service{
		email:    emailSender,
		sms:      smsSender,
		composer: sms.NewComposer(profile, domain.Location()),
		profile:  profile,
		cfg:      cfg,
	}
}

// Deliver sends msg and records the outcome. A message without a recipient
// on its channel is counted as skipped and returns nil.
func (s *Service) Deliver(ctx context.Context, msg Message) error {
	var err error
	switch msg.Channel {
	case ChannelEmail:
		err = s.deliverEmail(ctx, msg)
	case ChannelSMS:
		err = s.deliverSMS(ctx, msg)
	default:
		err = fmt.Errorf("unknown channel %q", msg.Channel)
	}

	switch {
	case errors.Is(err, ErrSkipped):
		metrics.RecordNotification(string(msg.Channel), metrics.ResultSkipped)
		return nil
	case err != nil:
		metrics.RecordNotification(string(msg.Channel), metrics.ResultError)
		return err
	}
	metrics.RecordNotification(string(msg.Channel), metrics.ResultOK)
	return nil
}

func (s *Service) deliverEmail(ctx context.Context, msg Message) error {
	lead := msg.Lead
	if lead.Email == "" {
		return ErrSkipped
	}
	to := email.Recipient{Email: lead.Email, FirstName: lead.FirstName, LastName: lead.LastName}

	switch msg.Kind {
	case KindConfirmation, KindPlanned, KindReminder, KindMissed:
		if lead.AppointmentDate == nil {
			return ErrSkipped
		}
		appt := s.appointment(lead)
		switch msg.Kind {
		case KindConfirmation:
			return s.email.SendAppointmentConfirmation(ctx, to, appt)
		case KindPlanned:
			return s.email.SendAppointmentPlanned(ctx, to, appt)
		case KindReminder:
			return s.email.SendAppointmentReminder(ctx, to, appt)
		default:
			return s.email.SendMissedAppointment(ctx, to, appt)
		}
	case KindJuristAssigned:
		return s.email.SendJuristAssigned(ctx, to, msg.JuristName)
	case KindFormulaire:
		return s.email.SendFormulaire(ctx, to, s.cfg.GetFormulaireURL())
	case KindDossierStatus:
		if lead.DossierStatus == "" {
			return ErrSkipped
		}
		return s.email.SendDossierStatus(ctx, to, lead.DossierStatus)
	case KindAccountCreated:
		return s.email.SendClientAccountCreated(ctx, to, strings.TrimRight(s.cfg.GetAppBaseURL(), "/")+"/espace-client")
	default:
		return fmt.Errorf("no email for %q", msg.Kind)
	}
}

func (s *Service) deliverSMS(ctx context.Context, msg Message) error {
	lead := msg.Lead
	if lead.Phone == "" || lead.AppointmentDate == nil {
		return ErrSkipped
	}

	var (
		text string
		err  error
	)
	switch msg.Kind {
	case KindConfirmation:
		text, err = s.composer.Confirmation(*lead.AppointmentDate)
	case KindReminder:
		text, err = s.composer.Reminder(*lead.AppointmentDate)
	default:
		return fmt.Errorf("no sms for %q", msg.Kind)
	}
	if err != nil {
		return err
	}
	return s.sms.Send(ctx, text, lead.Phone)
}

func (s *Service) appointment(lead events.LeadSnapshot) email.Appointment {
	local := lead.AppointmentDate.In(domain.Location())
	appt := email.Appointment{
		Date:     local.Format("02/01/2006"),
		Time:     local.Format("15:04"),
		Type:     domain.AppointmentTypeLabel(lead.AppointmentType),
		Location: s.profile.Address,
	}
	if lead.AppointmentType == domain.AppointmentTelephone || lead.AppointmentType == domain.AppointmentVisio {
		appt.Location = "À distance"
	}
	return appt
}
