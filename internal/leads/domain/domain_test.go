package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppointmentAcceptsLocalAndZonedLayouts(t *testing.T) {
	paris := Location()

	got, err := ParseAppointment("20/01/2026 10:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 20, 10, 0, 0, 0, paris)))

	got, err = ParseAppointment("2026-01-20T10:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 20, 10, 0, 0, 0, paris)))

	got, err = ParseAppointment("2026-01-20T09:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 20, 10, 0, 0, 0, paris)))

	got, err = ParseAppointment("20/01/2026")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 20, 0, 0, 0, 0, paris)))

	_, err = ParseAppointment("demain")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestLocationIsLoadedOnce(t *testing.T) {
	require.Equal(t, Timezone, Location().String())
	assert.Same(t, Location(), Location())
}

func TestDayBoundsFollowsParisCalendar(t *testing.T) {
	// 23:30 UTC on 19 Jan is already 20 Jan in Paris.
	start, end := DayBounds(time.Date(2026, 1, 19, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-20 00:00", start.Format("2006-01-02 15:04"))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestStatusRules(t *testing.T) {
	assert.True(t, RequiresAppointment(StatusRdvConfirme))
	assert.True(t, RequiresAppointment(StatusRdvPlanifie))
	assert.False(t, RequiresAppointment(StatusARappeler))
	assert.True(t, TriggersConfirmation(StatusRdvAConfirmer))
	assert.False(t, TriggersConfirmation(StatusAbsent))
	assert.Equal(t, "À rappeler", StatusLabel(StatusARappeler))
	assert.Equal(t, "UNKNOWN", StatusLabel("UNKNOWN"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Jean-pierre", Capitalize("  jEAN-PIERRE "))
	assert.Equal(t, "Émile", Capitalize("émile"))
	assert.Equal(t, "", Capitalize(" "))
}

func TestFormatDisplay(t *testing.T) {
	ts := time.Date(2026, 2, 19, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "19/02/2026 16:30", FormatDisplay(&ts))
	assert.Equal(t, "", FormatDisplay(nil))
}
