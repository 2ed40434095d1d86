package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papex_backend/platform/branding"
	"papex_backend/platform/logger"
)

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Rendez-vous confirmé à 14h":  "Rendez-vous confirme a 14h",
		"«Papiers» – 10€":             `"Papiers" - 10EUR`,
		"l’été, Ça marche…":           "l'ete, Ca marche...",
		"Émoji 👍 supprimé":            "Emoji  supprime",
		"Noël, Œuvre":                 "Noel, OEuvre",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestFormatAppointment(t *testing.T) {
	loc := paris(t)
	at := time.Date(2026, 2, 20, 15, 30, 0, 0, time.UTC) // 16h30 in Paris

	date, clock := FormatAppointment(at, loc)
	assert.Equal(t, "Ven. 20/02", date)
	assert.Equal(t, "16h30", clock)
}

func TestConfirmationMessage(t *testing.T) {
	c := NewComposer(branding.Default(), paris(t))
	at := time.Date(2026, 2, 20, 16, 30, 0, 0, paris(t))

	msg, err := c.Confirmation(at)
	require.NoError(t, err)
	assert.Equal(t, "RDV CONFIRME\nPapiers Express\nLe Ven. 20/02 a 16h30\n39 rue Navier, 75017\n\nTel: 0142596008\nMerci de votre confiance", msg)
}

func TestReminderMessage(t *testing.T) {
	c := NewComposer(branding.Default(), paris(t))
	at := time.Date(2026, 2, 20, 9, 0, 0, 0, paris(t))

	msg, err := c.Reminder(at)
	require.NoError(t, err)
	assert.Equal(t, "RAPPEL RDV\nPapiers Express\nLe Ven. 20/02 a 09h00\n39 rue Navier, 75017\nTel: 0142596008\nA bientot", msg)
}

func TestShorteningSteps(t *testing.T) {
	at := time.Date(2026, 2, 20, 16, 30, 0, 0, time.UTC)
	base := branding.Profile{Phone: "0142596008", AddressShortest: "Paris 17", ShortName: "Short"}

	t.Run("address first", func(t *testing.T) {
		p := base
		p.Name = strings.Repeat("N", 60)
		p.AddressShort = strings.Repeat("A", 60)
		msg, err := NewComposer(p, time.UTC).Confirmation(at)
		require.NoError(t, err)
		assert.Contains(t, msg, "Paris 17")
		assert.Contains(t, msg, p.Name)
		assert.LessOrEqual(t, len(msg), MaxLength)
	})

	t.Run("then company name", func(t *testing.T) {
		p := base
		p.Name = strings.Repeat("N", 80)
		p.AddressShort = strings.Repeat("A", 60)
		msg, err := NewComposer(p, time.UTC).Confirmation(at)
		require.NoError(t, err)
		assert.Contains(t, msg, "\nShort\n")
		assert.LessOrEqual(t, len(msg), MaxLength)
	})

	t.Run("ultra short", func(t *testing.T) {
		p := branding.Profile{Name: strings.Repeat("N", 70), AddressShort: strings.Repeat("A", 40), Phone: "0142596008"}
		msg, err := NewComposer(p, time.UTC).Reminder(at)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg, "RDV Ven. 20/02 16h30. "), msg)
		assert.True(t, strings.HasSuffix(msg, ". Tel:0142596008"), msg)
	})

	t.Run("too long", func(t *testing.T) {
		p := branding.Profile{Name: strings.Repeat("N", 200), Phone: "0142596008"}
		_, err := NewComposer(p, time.UTC).Reminder(at)
		var tooLong *ErrTooLong
		require.True(t, errors.As(err, &tooLong))
		assert.Greater(t, tooLong.Length, MaxLength)
	})
}

func TestOVHSenderPostsJob(t *testing.T) {
	var got ovhJobRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/time" {
			fmt.Fprint(w, time.Now().Unix())
			return
		}
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ids":[42],"invalidReceivers":[],"totalCreditsRemoved":1}`)
	}))
	defer srv.Close()

	client, err := NewOVHClient(srv.URL, "ak", "as", "ck")
	require.NoError(t, err)
	s := NewOVHSender(client, "sms-ab123-1", "PAPEX", logger.NewWithWriter("production", io.Discard))

	require.NoError(t, s.Send(context.Background(), "hello", "+33612345678"))
	assert.Equal(t, "/sms/sms-ab123-1/jobs", path)
	assert.Equal(t, "PAPEX", got.Sender)
	assert.Equal(t, []string{"+33612345678"}, got.Receivers)
	assert.Equal(t, "hello", got.Message)
}

func TestOVHSenderRequiresReceivers(t *testing.T) {
	s := NewOVHSender(nil, "svc", "", logger.NewWithWriter("production", io.Discard))
	assert.ErrorIs(t, s.Send(context.Background(), "hello"), ErrNoReceivers)
}
