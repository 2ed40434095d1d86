package domain

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata"
)

// Timezone is the business timezone used for calendar days and display.
const Timezone = "Europe/Paris"

// DisplayLayout is the day/month/year layout used for appointment dates in and out of the API.
const DisplayLayout = "02/01/2006 15:04"

// ErrInvalidDate is returned when a date cannot be parsed by any accepted layout.
var ErrInvalidDate = errors.New("invalid date")

var paris = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the business timezone.
func Location() *time.Location {
	return paris
}

var localLayouts = []string{
	DisplayLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
}

// ParseAppointment parses an appointment timestamp. RFC 3339 values keep their
// offset; layouts without a zone are read as Paris wall-clock time.
func ParseAppointment(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	loc := Location()
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseDay parses a YYYY-MM-DD calendar day in the business timezone.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DayBounds returns [start, end) of the business-timezone calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

// SlotStart normalises an appointment to the minute it books.
func SlotStart(t time.Time) time.Time {
	return t.Truncate(time.Minute).UTC()
}

// FormatDisplay renders t in the business timezone with DisplayLayout.
func FormatDisplay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(Location()).Format(DisplayLayout)
}
