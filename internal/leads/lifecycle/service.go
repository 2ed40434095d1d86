// Package lifecycle runs the scheduled lead jobs: appointment reminders,
// absence detection and the manual confirmation resend.
package lifecycle

import (
	"context"
	"time"

	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/repository"
	"papex_backend/internal/notification"
	"papex_backend/platform/logger"
	"papex_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

// Deliverer sends one notification synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, msg notification.Message) error
}

// Dispatcher hands a notification to the background queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notification.Message)
}

type Config interface {
	GetReminderDaysAhead() int
}

// Result counts what one run did.
type Result struct {
	Leads      int `json:"leads"`
	EmailsSent int `json:"emails_sent"`
	SMSSent    int `json:"sms_sent"`
	Failures   int `json:"failures"`
}

type Service struct {
	repo       repository.LifecycleStore
	deliverer  Deliverer
	dispatcher Dispatcher
	cfg        Config
	log        *logger.Logger
}

func New(repo repository.LifecycleStore, deliverer Deliverer, dispatcher Dispatcher, cfg Config, log *logger.Logger) *Service {
	return &Service{repo: repo, deliverer: deliverer, dispatcher: dispatcher, cfg: cfg, log: log}
}

// ReminderWindow returns the Paris calendar day now + days.
func ReminderWindow(now time.Time, days int) (time.Time, time.Time) {
	local := now.In(domain.Location())
	return domain.DayBounds(local.AddDate(0, 0, days))
}

// SendReminders claims the leads due for a reminder and notifies each one on
// email and SMS. The claim sets the reminder flag, so a lead is reminded at
// most once whatever the delivery outcome.
func (s *Service) SendReminders(ctx context.Context, now time.Time) (Result, error) {
	started := time.Now()
	from, to := ReminderWindow(now, s.cfg.GetReminderDaysAhead())

	leads, err := s.repo.ClaimReminders(ctx, now, domain.ReminderStatuses, from, to)
	if err != nil {
		s.log.DatabaseError("claim reminders", err)
		return Result{}, err
	}

	res := Result{Leads: len(leads)}
	for _, lead := range leads {
		email, sms := s.remind(ctx, lead)
		res.add(email, sms)
	}

	metrics.RecordLifecycle("reminder", res.Leads)
	s.log.JobRun("reminder", res.Leads, time.Since(started))
	return res, nil
}

// remind sends both channels concurrently; neither failure stops the other.
func (s *Service) remind(ctx context.Context, lead repository.Lead) (emailOutcome, smsOutcome outcome) {
	snap := lead.Snapshot()
	var g errgroup.Group

	if snap.Email != "" {
		g.Go(func() error {
			emailOutcome = s.deliver(ctx, notification.Message{Kind: notification.KindReminder, Channel: notification.ChannelEmail, Lead: snap})
			return nil
		})
	}
	if snap.Phone != "" {
		g.Go(func() error {
			smsOutcome = s.deliver(ctx, notification.Message{Kind: notification.KindReminder, Channel: notification.ChannelSMS, Lead: snap})
			return nil
		})
	}
	_ = g.Wait()
	return emailOutcome, smsOutcome
}

// MarkAbsent flags confirmed leads whose appointment has passed and sends the
// missed appointment email. The status update excludes leads already ABSENT.
func (s *Service) MarkAbsent(ctx context.Context, now time.Time) (Result, error) {
	started := time.Now()
	leads, err := s.repo.MarkAbsent(ctx, now)
	if err != nil {
		s.log.DatabaseError("mark absent", err)
		return Result{}, err
	}

	res := Result{Leads: len(leads)}
	for _, lead := range leads {
		snap := lead.Snapshot()
		if snap.Email == "" {
			continue
		}
		res.add(s.deliver(ctx, notification.Message{Kind: notification.KindMissed, Channel: notification.ChannelEmail, Lead: snap}), skipped)
	}

	metrics.RecordLifecycle("absence", res.Leads)
	s.log.JobRun("absence", res.Leads, time.Since(started))
	return res, nil
}

// ResendTodayConfirmations queues the confirmation email and SMS again for
// leads created today that still wait for their appointment.
func (s *Service) ResendTodayConfirmations(ctx context.Context, now time.Time) (Result, error) {
	from, to := domain.DayBounds(now)
	leads, err := s.repo.CreatedBetween(ctx, []string{domain.StatusRdvAConfirmer, domain.StatusRdvConfirme}, from, to)
	if err != nil {
		return Result{}, err
	}

	res := Result{Leads: len(leads)}
	for _, lead := range leads {
		snap := lead.Snapshot()
		if snap.Email != "" {
			s.dispatcher.Dispatch(ctx, notification.Message{Kind: notification.KindConfirmation, Channel: notification.ChannelEmail, Lead: snap})
			res.EmailsSent++
		}
		if snap.Phone != "" {
			s.dispatcher.Dispatch(ctx, notification.Message{Kind: notification.KindConfirmation, Channel: notification.ChannelSMS, Lead: snap})
			res.SMSSent++
		}
	}
	return res, nil
}

type outcome int

const (
	skipped outcome = iota
	sent
	failed
)

func (s *Service) deliver(ctx context.Context, msg notification.Message) outcome {
	if err := s.deliverer.Deliver(ctx, msg); err != nil {
		s.log.NotificationFailed(string(msg.Channel), string(msg.Kind), msg.Lead.ID, err)
		return failed
	}
	return sent
}

func (r *Result) add(email, sms outcome) {
	if email == sent {
		r.EmailsSent++
	}
	if sms == sent {
		r.SMSSent++
	}
	if email == failed {
		r.Failures++
	}
	if sms == failed {
		r.Failures++
	}
}
