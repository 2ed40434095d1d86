package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"papex_backend/platform/branding"
	"papex_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes (will be base64-encoded for Brevo)
	FileName string // e.g. "contrat-PAPEX-C-42.pdf"
	MIMEType string // e.g. "application/pdf"
}

// Recipient identifies the person an email is addressed to.
type Recipient struct {
	Email     string
	FirstName string
	LastName  string
}

// Appointment describes the rendez-vous mentioned in an email.
type Appointment struct {
	Date     string
	Time     string
	Type     string
	Location string
}

type Sender interface {
	SendAppointmentConfirmation(ctx context.Context, to Recipient, appt Appointment) error
	SendAppointmentPlanned(ctx context.Context, to Recipient, appt Appointment) error
	SendAppointmentReminder(ctx context.Context, to Recipient, appt Appointment) error
	SendMissedAppointment(ctx context.Context, to Recipient, appt Appointment) error
	SendJuristAssigned(ctx context.Context, to Recipient, juristName string) error
	SendFormulaire(ctx context.Context, to Recipient, formURL string) error
	SendDossierStatus(ctx context.Context, to Recipient, status string) error
	SendClientAccountCreated(ctx context.Context, to Recipient, spaceURL string) error
	SendContract(ctx context.Context, to Recipient, reference string, attachments ...Attachment) error
	SendReceipts(ctx context.Context, to Recipient, attachments ...Attachment) error
}

// Envelope carries the addressing shared by every message.
type Envelope struct {
	FromName    string
	FromAddress string
	ReplyTo     string

	// ArchiveBcc receives a blind copy of every client message when set.
	ArchiveBcc string
}

func (e Envelope) archiveFor(to string) string {
	if e.ArchiveBcc == "" || strings.EqualFold(e.ArchiveBcc, to) {
		return ""
	}
	return e.ArchiveBcc
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error
}

type NoopSender struct{}

func (NoopSender) SendAppointmentConfirmation(context.Context, Recipient, Appointment) error {
	return nil
}

func (NoopSender) SendAppointmentPlanned(context.Context, Recipient, Appointment) error { return nil }

func (NoopSender) SendAppointmentReminder(context.Context, Recipient, Appointment) error { return nil }

func (NoopSender) SendMissedAppointment(context.Context, Recipient, Appointment) error { return nil }

func (NoopSender) SendJuristAssigned(context.Context, Recipient, string) error { return nil }

func (NoopSender) SendFormulaire(context.Context, Recipient, string) error { return nil }

func (NoopSender) SendDossierStatus(context.Context, Recipient, string) error { return nil }

func (NoopSender) SendClientAccountCreated(context.Context, Recipient, string) error { return nil }

func (NoopSender) SendContract(context.Context, Recipient, string, ...Attachment) error { return nil }

func (NoopSender) SendReceipts(context.Context, Recipient, ...Attachment) error { return nil }

// NewSender picks the transport configured for the environment.
func NewSender(cfg config.EmailConfig, profile branding.Profile) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	envelope := Envelope{
		FromName:    cfg.GetEmailFromName(),
		FromAddress: cfg.GetEmailFromAddress(),
		ReplyTo:     cfg.GetEmailReplyTo(),
		ArchiveBcc:  cfg.GetEmailArchiveBcc(),
	}

	var transport Transport
	switch strings.ToLower(cfg.GetEmailProvider()) {
	case "smtp":
		transport = NewSMTPTransport(SMTPServer{
			Host:     cfg.GetSMTPHost(),
			Port:     cfg.GetSMTPPort(),
			Username: cfg.GetSMTPUsername(),
			Password: cfg.GetSMTPPassword(),
		}, envelope)
	case "brevo", "":
		transport = NewBrevoTransport(cfg.GetBrevoAPIKey(), envelope, &http.Client{Timeout: 10 * time.Second})
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
	return NewTemplateSender(transport, profile), nil
}
