package sms

import (
	"fmt"
	"strings"
	"time"

	"papex_backend/platform/branding"
)

var shortDays = [...]string{"Dim.", "Lun.", "Mar.", "Mer.", "Jeu.", "Ven.", "Sam."}

// ErrTooLong is returned when a message cannot be shortened to MaxLength.
type ErrTooLong struct {
	Length int
}

func (e *ErrTooLong) Error() string {
	return fmt.Sprintf("sms too long after shortening: %d characters", e.Length)
}

// FormatAppointment renders t in loc as "Ven. 19/02" and "16h30".
func FormatAppointment(t time.Time, loc *time.Location) (date, clock string) {
	local := t.In(loc)
	date = fmt.Sprintf("%s %s", shortDays[local.Weekday()], local.Format("02/01"))
	clock = fmt.Sprintf("%02dh%02d", local.Hour(), local.Minute())
	return date, clock
}

// Composer builds the appointment messages for the company profile.
type Composer struct {
	profile branding.Profile
	loc     *time.Location
}

func NewComposer(profile branding.Profile, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{profile: profile, loc: loc}
}

func (c *Composer) Confirmation(appointment time.Time) (string, error) {
	date, clock := FormatAppointment(appointment, c.loc)
	msg := fmt.Sprintf("RDV CONFIRME\n%s\nLe %s a %s\n%s\n\nTel: %s\nMerci de votre confiance",
		c.profile.Name, date, clock, c.profile.AddressShort, c.profile.Phone)
	return c.fit(Normalize(msg), date, clock)
}

func (c *Composer) Reminder(appointment time.Time) (string, error) {
	date, clock := FormatAppointment(appointment, c.loc)
	msg := fmt.Sprintf("RAPPEL RDV\n%s\nLe %s a %s\n%s\nTel: %s\nA bientot",
		c.profile.Name, date, clock, c.profile.AddressShort, c.profile.Phone)
	return c.fit(Normalize(msg), date, clock)
}

// fit shortens msg step by step until it fits in one message.
func (c *Composer) fit(msg, date, clock string) (string, error) {
	if len(msg) <= MaxLength {
		return msg, nil
	}

	if c.profile.AddressShort != "" && c.profile.AddressShortest != "" {
		msg = strings.ReplaceAll(msg, Normalize(c.profile.AddressShort), Normalize(c.profile.AddressShortest))
	}
	if len(msg) > MaxLength && c.profile.ShortName != "" {
		msg = strings.ReplaceAll(msg, Normalize(c.profile.Name), Normalize(c.profile.ShortName))
	}
	if len(msg) > MaxLength {
		msg = Normalize(fmt.Sprintf("RDV %s %s. %s %s. Tel:%s",
			date, clock, c.profile.Name, c.profile.AddressShort, c.profile.Phone))
	}
	if len(msg) > MaxLength {
		return "", &ErrTooLong{Length: len(msg)}
	}
	return msg, nil
}
