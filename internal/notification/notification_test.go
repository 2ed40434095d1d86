package notification

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"papex_backend/internal/email"
	"papex_backend/internal/events"
	"papex_backend/platform/branding"
	"papex_backend/platform/logger"
)

type testConfig struct{}

func (testConfig) GetAppBaseURL() string    { return "https://app.example.com/" }
func (testConfig) GetFormulaireURL() string { return "https://forms.example.com/f" }

type testEmailSender struct {
	mu    sync.Mutex
	calls []string
	args  []string
	fail  error
}

func (s *testEmailSender) record(name, arg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	s.args = append(s.args, arg)
	return s.fail
}

func (s *testEmailSender) SendAppointmentConfirmation(_ context.Context, _ email.Recipient, a email.Appointment) error {
	return s.record("confirmation", a.Date+" "+a.Time+" "+a.Location)
}
func (s *testEmailSender) SendAppointmentPlanned(_ context.Context, _ email.Recipient, a email.Appointment) error {
	return s.record("planned", a.Date)
}
func (s *testEmailSender) SendAppointmentReminder(_ context.Context, _ email.Recipient, a email.Appointment) error {
	return s.record("reminder", a.Date)
}
func (s *testEmailSender) SendMissedAppointment(_ context.Context, _ email.Recipient, a email.Appointment) error {
	return s.record("missed", a.Date)
}
func (s *testEmailSender) SendJuristAssigned(_ context.Context, _ email.Recipient, name string) error {
	return s.record("jurist", name)
}
func (s *testEmailSender) SendFormulaire(_ context.Context, _ email.Recipient, url string) error {
	return s.record("formulaire", url)
}
func (s *testEmailSender) SendDossierStatus(_ context.Context, _ email.Recipient, status string) error {
	return s.record("dossier", status)
}
func (s *testEmailSender) SendClientAccountCreated(_ context.Context, _ email.Recipient, url string) error {
	return s.record("account", url)
}
func (s *testEmailSender) SendContract(context.Context, email.Recipient, string, ...email.Attachment) error {
	return s.record("contract", "")
}
func (s *testEmailSender) SendReceipts(context.Context, email.Recipient, ...email.Attachment) error {
	return s.record("receipts", "")
}

type testSMSSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *testSMSSender) Send(_ context.Context, message string, _ ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

type recordingSink struct {
	msgs []Message
}

func (r *recordingSink) Dispatch(_ context.Context, msg Message) {
	r.msgs = append(r.msgs, msg)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("production", io.Discard)
}

func appointmentAt() *time.Time {
	t := time.Date(2026, 2, 20, 15, 30, 0, 0, time.UTC)
	return &t
}

func fullLead(status string) events.LeadSnapshot {
	return events.LeadSnapshot{
		ID:              7,
		FirstName:       "Jean",
		LastName:        "Dupont",
		Email:           "jean@example.com",
		Phone:           "+33612345678",
		AppointmentDate: appointmentAt(),
		AppointmentType: "RDV_PRESENTIEL",
		Status:          status,
	}
}

func TestLeadCreatedQueuesConfirmationOnBothChannels(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink, testLogger())

	_ = m.Handle(context.Background(), events.LeadCreated{Lead: fullLead("RDV_A_CONFIRMER")})

	if len(sink.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sink.msgs))
	}
	if sink.msgs[0].Channel != ChannelEmail || sink.msgs[1].Channel != ChannelSMS {
		t.Fatalf("unexpected channels: %+v", sink.msgs)
	}
	for _, msg := range sink.msgs {
		if msg.Kind != KindConfirmation {
			t.Fatalf("expected confirmation, got %s", msg.Kind)
		}
	}
}

func TestLeadCreatedSkipsMissingContacts(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink, testLogger())

	lead := fullLead("RDV_CONFIRME")
	lead.Email = ""
	_ = m.Handle(context.Background(), events.LeadCreated{Lead: lead})

	if len(sink.msgs) != 1 || sink.msgs[0].Channel != ChannelSMS {
		t.Fatalf("expected only the sms, got %+v", sink.msgs)
	}
}

func TestStatusChangeRouting(t *testing.T) {
	cases := []struct {
		status string
		want   []Kind
	}{
		{"RDV_CONFIRME", []Kind{KindConfirmation, KindConfirmation}},
		{"RDV_PLANIFIE", []Kind{KindPlanned}},
		{"A_RAPPELER", nil},
		{"ABSENT", nil},
	}
	for _, tc := range cases {
		sink := &recordingSink{}
		m := New(sink, testLogger())
		_ = m.Handle(context.Background(), events.LeadStatusChanged{Lead: fullLead(tc.status)})

		if len(sink.msgs) != len(tc.want) {
			t.Fatalf("%s: expected %d messages, got %d", tc.status, len(tc.want), len(sink.msgs))
		}
		for i, kind := range tc.want {
			if sink.msgs[i].Kind != kind {
				t.Fatalf("%s: expected %s, got %s", tc.status, kind, sink.msgs[i].Kind)
			}
		}
	}
}

func TestEmailOnlyEvents(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink, testLogger())
	ctx := context.Background()

	dossier := fullLead("RDV_CONFIRME")
	dossier.DossierStatus = "Dossier déposé"
	_ = m.Handle(ctx, events.LeadDossierStatusChanged{Lead: dossier})
	_ = m.Handle(ctx, events.JuristAssigned{Lead: fullLead("RDV_CONFIRME"), JuristName: "Marie Curie"})
	_ = m.Handle(ctx, events.FormulaireRequested{Lead: fullLead("RDV_CONFIRME")})
	_ = m.Handle(ctx, events.ClientAccountCreated{Lead: fullLead("PRESENT"), ClientID: 3})

	want := []Kind{KindDossierStatus, KindJuristAssigned, KindFormulaire, KindAccountCreated}
	if len(sink.msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(sink.msgs))
	}
	for i, kind := range want {
		if sink.msgs[i].Kind != kind || sink.msgs[i].Channel != ChannelEmail {
			t.Fatalf("message %d: got %+v", i, sink.msgs[i])
		}
	}
	if sink.msgs[1].JuristName != "Marie Curie" || sink.msgs[3].ClientID != 3 {
		t.Fatalf("event details lost: %+v", sink.msgs)
	}
}

func TestDeliverRendersBothChannels(t *testing.T) {
	mail := &testEmailSender{}
	text := &testSMSSender{}
	svc := NewService(mail, text, branding.Default(), testConfig{})
	ctx := context.Background()
	lead := fullLead("RDV_CONFIRME")

	if err := svc.Deliver(ctx, Message{Kind: KindConfirmation, Channel: ChannelEmail, Lead: lead}); err != nil {
		t.Fatalf("email: %v", err)
	}
	if err := svc.Deliver(ctx, Message{Kind: KindReminder, Channel: ChannelSMS, Lead: lead}); err != nil {
		t.Fatalf("sms: %v", err)
	}

	if mail.args[0] != "20/02/2026 16:30 39 rue Navier, 75017 Paris" {
		t.Fatalf("unexpected appointment rendering %q", mail.args[0])
	}
	if len(text.messages) != 1 || !strings.HasPrefix(text.messages[0], "RAPPEL RDV\n") {
		t.Fatalf("unexpected sms %q", text.messages)
	}
	if !strings.Contains(text.messages[0], "Le Ven. 20/02 a 16h30") {
		t.Fatalf("sms not in Paris time: %q", text.messages[0])
	}
}

func TestDeliverSkipsWithoutRecipient(t *testing.T) {
	mail := &testEmailSender{}
	text := &testSMSSender{}
	svc := NewService(mail, text, branding.Default(), testConfig{})

	lead := fullLead("RDV_CONFIRME")
	lead.Email = ""
	lead.Phone = ""
	if err := svc.Deliver(context.Background(), Message{Kind: KindConfirmation, Channel: ChannelEmail, Lead: lead}); err != nil {
		t.Fatalf("skip must not fail: %v", err)
	}
	if err := svc.Deliver(context.Background(), Message{Kind: KindConfirmation, Channel: ChannelSMS, Lead: lead}); err != nil {
		t.Fatalf("skip must not fail: %v", err)
	}
	if len(mail.calls) != 0 || len(text.messages) != 0 {
		t.Fatalf("nothing should have been sent")
	}
}

func TestDeliverUsesConfiguredLinks(t *testing.T) {
	mail := &testEmailSender{}
	svc := NewService(mail, &testSMSSender{}, branding.Default(), testConfig{})
	ctx := context.Background()

	_ = svc.Deliver(ctx, Message{Kind: KindFormulaire, Channel: ChannelEmail, Lead: fullLead("RDV_CONFIRME")})
	_ = svc.Deliver(ctx, Message{Kind: KindAccountCreated, Channel: ChannelEmail, Lead: fullLead("PRESENT")})

	if mail.args[0] != "https://forms.example.com/f" || mail.args[1] != "https://app.example.com/espace-client" {
		t.Fatalf("unexpected links %v", mail.args)
	}
}

func TestDeliverReturnsSenderErrors(t *testing.T) {
	mail := &testEmailSender{fail: errors.New("brevo down")}
	svc := NewService(mail, &testSMSSender{}, branding.Default(), testConfig{})

	err := svc.Deliver(context.Background(), Message{Kind: KindMissed, Channel: ChannelEmail, Lead: fullLead("ABSENT")})
	if err == nil {
		t.Fatalf("expected sender error")
	}
}

type fakeQueue struct {
	fail error
	msgs []Message
}

func (q *fakeQueue) EnqueueNotification(_ context.Context, msg Message) error {
	if q.fail != nil {
		return q.fail
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

type countingDeliverer struct {
	mu    sync.Mutex
	count int
}

func (d *countingDeliverer) Deliver(context.Context, Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	return errors.New("ignored")
}

func TestDispatcherPrefersQueue(t *testing.T) {
	q := &fakeQueue{}
	del := &countingDeliverer{}
	d := NewDispatcher(q, del, testLogger())

	d.Dispatch(context.Background(), Message{Kind: KindConfirmation, Channel: ChannelSMS})
	d.Wait()

	if len(q.msgs) != 1 || del.count != 0 {
		t.Fatalf("expected queued message, got %d queued / %d inline", len(q.msgs), del.count)
	}
}

func TestDispatcherDeliversInlineWithoutQueue(t *testing.T) {
	del := &countingDeliverer{}
	d := NewDispatcher(nil, del, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, Message{Kind: KindConfirmation, Channel: ChannelEmail})
	cancel()
	d.Wait()

	if del.count != 1 {
		t.Fatalf("expected inline delivery, got %d", del.count)
	}
}

func TestDispatcherFallsBackWhenEnqueueFails(t *testing.T) {
	del := &countingDeliverer{}
	d := NewDispatcher(&fakeQueue{fail: errors.New("redis down")}, del, testLogger())

	d.Dispatch(context.Background(), Message{Kind: KindReminder, Channel: ChannelEmail})
	d.Wait()

	if del.count != 1 {
		t.Fatalf("expected inline fallback, got %d", del.count)
	}
}

func TestMessageRoundTripRejectsIncomplete(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"kind":"formulaire"}`)); err == nil {
		t.Fatalf("expected error for missing channel")
	}
	raw, err := Message{Kind: KindFormulaire, Channel: ChannelEmail, Lead: fullLead("RDV_CONFIRME")}.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := ParseMessage(raw)
	if err != nil || msg.Lead.Email != "jean@example.com" {
		t.Fatalf("unexpected parse %+v, %v", msg, err)
	}
}
