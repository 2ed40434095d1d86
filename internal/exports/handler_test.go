package exports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"papex_backend/internal/leads/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	filter Filter
	rows   []LeadRow
	err    error
}

func (f *fakeStore) ListLeads(_ context.Context, filter Filter) ([]LeadRow, error) {
	f.filter = filter
	return f.rows, f.err
}

func newEngine(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store)
	h.now = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }
	r := gin.New()
	h.RegisterRoutes(r.Group("/exports"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestExportLeadsCSV(t *testing.T) {
	email := "jean@example.com"
	clientID := int64(7)
	appt := time.Date(2026, 5, 12, 12, 30, 0, 0, time.UTC)
	store := &fakeStore{rows: []LeadRow{{
		ID:              42,
		FirstName:       "Jean",
		LastName:        "Dupont",
		Email:           &email,
		Phone:           "+33612345678",
		Status:          domain.StatusRdvConfirme,
		AppointmentDate: &appt,
		AppointmentType: domain.AppointmentPresentiel,
		CreatedAt:       time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC),
		ClientID:        &clientID,
		Contracts:       1,
		ContractedCents: 123450,
		PaidCents:       50000,
	}}}

	rec := get(newEngine(store), "/exports/leads.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=leads-2026-02-09-2026-05-10.csv", rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "\ufeffID;Prénom;Nom;"), body)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "42;Jean;Dupont;jean@example.com;+33612345678;Rendez-vous confirmé;;12/05/2026 14:30;"+
		"Rendez-vous présentiel;04/05/2026 10:30;7;1;1234,50;500,00;734,50", lines[1])

	paris := domain.Location()
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, paris), store.filter.From.In(paris))
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, paris), store.filter.To.In(paris))
	assert.Equal(t, defaultLimit, store.filter.Limit)
}

func TestExportLeadsCSVFilters(t *testing.T) {
	store := &fakeStore{}
	rec := get(newEngine(store), "/exports/leads.csv?fromDate=2026-01-01&toDate=2026-01-31&status=ABSENT&limit=900000")
	require.Equal(t, http.StatusOK, rec.Code)

	paris := domain.Location()
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, paris), store.filter.From.In(paris))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, paris), store.filter.To.In(paris))
	assert.Equal(t, domain.StatusAbsent, store.filter.Status)
	assert.Equal(t, maxLimit, store.filter.Limit)
}

func TestExportLeadsCSVRejectsBadInput(t *testing.T) {
	r := newEngine(&fakeStore{})

	for _, path := range []string{
		"/exports/leads.csv?fromDate=01/01/2026",
		"/exports/leads.csv?fromDate=2026-02-01&toDate=2026-01-01",
		"/exports/leads.csv?status=UNKNOWN",
	} {
		rec := get(r, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestExportLeadsCSVStoreFailure(t *testing.T) {
	rec := get(newEngine(&fakeStore{err: errors.New("db down")}), "/exports/leads.csv")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFormatEuros(t *testing.T) {
	assert.Equal(t, "0,00", formatEuros(0))
	assert.Equal(t, "12,05", formatEuros(1205))
	assert.Equal(t, "-3,50", formatEuros(-350))
}
