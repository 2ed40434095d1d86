package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"papex_backend/internal/leads/domain"
	"papex_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout   = "2006-01-02"
	defaultDays  = 90
	defaultLimit = 5000
	maxLimit     = 50000
	utf8BOM      = "\ufeff"

	msgInvalidRange  = "Période invalide (format attendu AAAA-MM-JJ)."
	msgInvalidStatus = "Statut inconnu."
)

// Store is what the handler reads from.
type Store interface {
	ListLeads(ctx context.Context, f Filter) ([]LeadRow, error)
}

// Handler serves the spreadsheet exports.
type Handler struct {
	store Store
	now   func() time.Time
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads.csv", h.ExportLeadsCSV)
}

// ExportLeadsCSV writes the leads created in the requested period with their
// billing totals. The file opens directly in a French spreadsheet: UTF-8 BOM,
// semicolon separator, comma decimals.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	from, to, err := parseDateRange(c, h.now())
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRange, nil)
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !domain.ValidStatus(status) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidStatus, nil)
		return
	}

	rows, err := h.store.ListLeads(c.Request.Context(), Filter{
		From:   from,
		To:     to,
		Status: status,
		Limit:  parseLimit(c, defaultLimit, maxLimit),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	filename := fmt.Sprintf("leads-%s-%s.csv", from.In(domain.Location()).Format(dateLayout),
		to.Add(-time.Second).In(domain.Location()).Format(dateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	if _, err := c.Writer.WriteString(utf8BOM); err != nil {
		return
	}
	writer := csv.NewWriter(c.Writer)
	writer.Comma = ';'
	if err := writer.Write(csvHeaders); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(row.CSV()); err != nil {
			return
		}
	}
	writer.Flush()
}

var csvHeaders = []string{
	"ID", "Prénom", "Nom", "E-mail", "Téléphone", "Statut", "Statut du dossier",
	"Rendez-vous", "Type de rendez-vous", "Créé le", "Client", "Contrats",
	"Montant contracté", "Montant encaissé", "Reste à payer",
}

func (r LeadRow) CSV() []string {
	client := ""
	if r.ClientID != nil {
		client = strconv.FormatInt(*r.ClientID, 10)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.FirstName,
		r.LastName,
		deref(r.Email),
		r.Phone,
		domain.StatusLabel(r.Status),
		deref(r.DossierStatus),
		domain.FormatDisplay(r.AppointmentDate),
		domain.AppointmentTypeLabel(r.AppointmentType),
		domain.FormatDisplay(&r.CreatedAt),
		client,
		strconv.Itoa(r.Contracts),
		formatEuros(r.ContractedCents),
		formatEuros(r.PaidCents),
		formatEuros(r.ContractedCents - r.PaidCents),
	}
}

// parseDateRange reads fromDate and toDate as Paris calendar days. toDate is
// inclusive; the returned end is the start of the following day.
func parseDateRange(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	loc := domain.Location()
	today, _ := domain.DayBounds(now.In(loc))

	from := today.AddDate(0, 0, -defaultDays)
	to := today.AddDate(0, 0, 1)

	if raw := strings.TrimSpace(c.Query("fromDate")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("toDate")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("toDate before fromDate")
	}
	return from, to, nil
}

func parseLimit(c *gin.Context, fallback int, max int) int {
	limit := fallback
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit > max {
		return max
	}
	if limit < 1 {
		return fallback
	}
	return limit
}

// formatEuros renders cents as "1234,50".
func formatEuros(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
