package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papex_backend/platform/branding"
)

type sentMessage struct {
	to          string
	subject     string
	html        string
	attachments []Attachment
}

type recordingTransport struct {
	sent []sentMessage
}

func (r *recordingTransport) Send(_ context.Context, to, subject, html string, attachments ...Attachment) error {
	r.sent = append(r.sent, sentMessage{to: to, subject: subject, html: html, attachments: attachments})
	return nil
}

func newTestSender(tr Transport) *TemplateSender {
	s := NewTemplateSender(tr, branding.Default())
	s.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestEveryTemplateRenders(t *testing.T) {
	tr := &recordingTransport{}
	s := newTestSender(tr)
	ctx := context.Background()
	to := Recipient{Email: "jean@example.com", FirstName: "Jean", LastName: "Dupont"}
	appt := Appointment{Date: "12/05/2026", Time: "14:30", Type: "Rendez-vous présentiel"}

	require.NoError(t, s.SendAppointmentConfirmation(ctx, to, appt))
	require.NoError(t, s.SendAppointmentPlanned(ctx, to, appt))
	require.NoError(t, s.SendAppointmentReminder(ctx, to, appt))
	require.NoError(t, s.SendMissedAppointment(ctx, to, appt))
	require.NoError(t, s.SendJuristAssigned(ctx, to, "Marie Curie"))
	require.NoError(t, s.SendFormulaire(ctx, to, "https://forms.example.com/abc"))
	require.NoError(t, s.SendDossierStatus(ctx, to, "En cours d'instruction"))
	require.NoError(t, s.SendClientAccountCreated(ctx, to, "https://app.example.com/espace"))
	require.NoError(t, s.SendContract(ctx, to, "C-42"))
	require.NoError(t, s.SendReceipts(ctx, to, Attachment{FileName: "recu.pdf"}))

	require.Len(t, tr.sent, 10)
	brand := branding.Default().Name
	for _, m := range tr.sent {
		assert.Equal(t, "jean@example.com", m.to)
		assert.True(t, strings.HasSuffix(m.subject, "– "+brand), m.subject)
		assert.Contains(t, m.html, "Bonjour Jean Dupont")
		assert.Contains(t, m.html, "© 2026 "+brand)
	}
}

func TestConfirmationFallsBackToCompanyAddress(t *testing.T) {
	tr := &recordingTransport{}
	s := newTestSender(tr)

	err := s.SendAppointmentConfirmation(context.Background(), Recipient{Email: "a@example.com"}, Appointment{Date: "12/05/2026", Time: "09:00"})
	require.NoError(t, err)

	html := tr.sent[0].html
	assert.Contains(t, html, "12/05/2026")
	assert.Contains(t, html, "09:00")
	assert.Contains(t, html, template.HTMLEscapeString(branding.Default().Address))
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	tr := &recordingTransport{}
	s := newTestSender(tr)

	err := s.SendDossierStatus(context.Background(), Recipient{Email: "a@example.com", FirstName: "<script>"}, "<b>ok</b>")
	require.NoError(t, err)
	assert.NotContains(t, tr.sent[0].html, "<script>")
	assert.NotContains(t, tr.sent[0].html, "<b>ok</b>")
}

func TestReceiptsPassAttachmentsThrough(t *testing.T) {
	tr := &recordingTransport{}
	s := newTestSender(tr)
	atts := []Attachment{{FileName: "r1.pdf"}, {FileName: "r2.pdf"}}

	require.NoError(t, s.SendReceipts(context.Background(), Recipient{Email: "a@example.com"}, atts...))
	assert.Len(t, tr.sent[0].attachments, 2)
	assert.Contains(t, tr.sent[0].html, "vos 2 reçus")
}

func TestBrevoTransportPostsPayload(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	env := Envelope{
		FromName:    "Papiers Express",
		FromAddress: "noreply@example.com",
		ReplyTo:     "contact@example.com",
		ArchiveBcc:  "archive@example.com",
	}
	tr := NewBrevoTransport("secret", env, srv.Client()).WithEndpoint(srv.URL)
	err := tr.Send(context.Background(), "jean@example.com", "Sujet", "<p>hi</p>", Attachment{Content: []byte("pdf"), FileName: "c.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, "noreply@example.com", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "jean@example.com", got.To[0].Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "contact@example.com", got.ReplyTo.Email)
	require.Len(t, got.Bcc, 1)
	assert.Equal(t, "archive@example.com", got.Bcc[0].Email)
	require.Len(t, got.Attachment, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("pdf")), got.Attachment[0].Content)
}

func TestBrevoPayloadSkipsArchiveForArchiveRecipient(t *testing.T) {
	tr := NewBrevoTransport("k", Envelope{FromAddress: "noreply@example.com", ArchiveBcc: "archive@example.com"}, http.DefaultClient)

	p := tr.payload("ARCHIVE@example.com", "s", "h", nil)
	assert.Empty(t, p.Bcc)
	assert.Nil(t, p.ReplyTo)
}

func TestBrevoTransportReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := NewBrevoTransport("bad", Envelope{FromAddress: "noreply@example.com"}, srv.Client()).WithEndpoint(srv.URL)
	err := tr.Send(context.Background(), "jean@example.com", "Sujet", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	var brevoErr *BrevoError
	require.True(t, errors.As(err, &brevoErr))
	assert.Equal(t, "invalid key", brevoErr.Body)
	assert.False(t, brevoErr.Retryable())
	assert.True(t, (&BrevoError{Status: http.StatusTooManyRequests}).Retryable())
}

func TestSMTPMessageCarriesEnvelope(t *testing.T) {
	tr := NewSMTPTransport(SMTPServer{Host: "localhost", Port: 587}, Envelope{
		FromName:    "Papiers Express",
		FromAddress: "noreply@example.com",
		ReplyTo:     "contact@example.com",
		ArchiveBcc:  "archive@example.com",
	})

	msg, err := tr.message("jean@example.com", "Sujet", "<p>hi</p>", []Attachment{{FileName: "c.pdf", Content: []byte("pdf")}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Reply-To: <contact@example.com>")
	assert.Contains(t, raw, "Subject: Sujet")
	assert.Contains(t, raw, `filename="c.pdf"`)

	_, err = tr.message("not an address", "s", "h", nil)
	require.Error(t, err)
}
