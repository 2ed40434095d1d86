package email

import (
	"context"
	"fmt"
	"time"

	"papex_backend/platform/branding"
)

// TemplateSender renders the embedded templates and hands them to a Transport.
type TemplateSender struct {
	transport Transport
	profile   branding.Profile
	now       func() time.Time
}

func NewTemplateSender(transport Transport, profile branding.Profile) *TemplateSender {
	return &TemplateSender{transport: transport, profile: profile, now: time.Now}
}

func (s *TemplateSender) subject(base string) string {
	return fmt.Sprintf("%s – %s", base, s.profile.Name)
}

func (s *TemplateSender) base(to Recipient, heading string) baseEmailData {
	return baseEmailData{
		Title:     heading,
		Heading:   heading,
		FirstName: to.FirstName,
		LastName:  to.LastName,
		Company:   newCompanyData(s.profile, s.now()),
	}
}

func (s *TemplateSender) appointment(ctx context.Context, to Recipient, appt Appointment, tmpl, subject, heading string) error {
	if appt.Location == "" {
		appt.Location = s.profile.Address
	}
	content, err := renderEmailTemplate(tmpl, appointmentEmailData{
		baseEmailData: s.base(to, heading),
		Appointment:   appt,
	})
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subject), content)
}

func (s *TemplateSender) SendAppointmentConfirmation(ctx context.Context, to Recipient, appt Appointment) error {
	return s.appointment(ctx, to, appt, "appointment_confirmation.html", subjectConfirmation, "Votre rendez-vous est enregistré")
}

func (s *TemplateSender) SendAppointmentPlanned(ctx context.Context, to Recipient, appt Appointment) error {
	return s.appointment(ctx, to, appt, "appointment_planned.html", subjectPlanned, "Rendez-vous planifié")
}

func (s *TemplateSender) SendAppointmentReminder(ctx context.Context, to Recipient, appt Appointment) error {
	return s.appointment(ctx, to, appt, "appointment_reminder.html", subjectReminder, "Rappel de rendez-vous")
}

func (s *TemplateSender) SendMissedAppointment(ctx context.Context, to Recipient, appt Appointment) error {
	return s.appointment(ctx, to, appt, "appointment_missed.html", subjectMissed, "Nous ne vous avons pas vu")
}

func (s *TemplateSender) SendJuristAssigned(ctx context.Context, to Recipient, juristName string) error {
	content, err := renderEmailTemplate("jurist_assigned.html", juristAssignedEmailData{
		baseEmailData: s.base(to, "Votre juriste"),
		JuristName:    juristName,
	})
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectJuristAssigned), content)
}

func (s *TemplateSender) SendFormulaire(ctx context.Context, to Recipient, formURL string) error {
	data := s.base(to, "Formulaire à compléter")
	data.CTALabel = "Compléter le formulaire"
	data.CTAURL = formURL
	content, err := renderEmailTemplate("formulaire.html", data)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectFormulaire), content)
}

func (s *TemplateSender) SendDossierStatus(ctx context.Context, to Recipient, status string) error {
	content, err := renderEmailTemplate("dossier_status.html", dossierStatusEmailData{
		baseEmailData: s.base(to, "Suivi de votre dossier"),
		Status:        status,
	})
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectDossierStatus), content)
}

func (s *TemplateSender) SendClientAccountCreated(ctx context.Context, to Recipient, spaceURL string) error {
	data := s.base(to, "Bienvenue dans votre espace client")
	data.CTALabel = "Accéder à mon espace"
	data.CTAURL = spaceURL
	content, err := renderEmailTemplate("account_created.html", data)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectAccountCreated), content)
}

func (s *TemplateSender) SendContract(ctx context.Context, to Recipient, reference string, attachments ...Attachment) error {
	content, err := renderEmailTemplate("contract.html", contractEmailData{
		baseEmailData:  s.base(to, "Votre contrat"),
		Reference:      reference,
		HasAttachments: len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectContract), content, attachments...)
}

func (s *TemplateSender) SendReceipts(ctx context.Context, to Recipient, attachments ...Attachment) error {
	content, err := renderEmailTemplate("receipts.html", receiptsEmailData{
		baseEmailData: s.base(to, "Vos reçus de paiement"),
		Count:         len(attachments),
	})
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, to.Email, s.subject(subjectReceipts), content, attachments...)
}
