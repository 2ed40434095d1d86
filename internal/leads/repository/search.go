package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListParams filters the staff lead list.
type ListParams struct {
	Search string
	Status string
	// DateField is "created_at" or "appointment_date"; the day is [DayStart, DayEnd).
	DateField string
	DayStart  *time.Time
	DayEnd    *time.Time
	// RestrictTo limits the result to leads linked to this user.
	RestrictTo *uuid.UUID
	Page       int
	PageSize   int
}

type ListResult struct {
	Items []Lead
	Total int
}

// SearchParams drives the advanced search screen.
type SearchParams struct {
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ApptFrom      *time.Time
	ApptTo        *time.Time
	Status        string
	DossierStatus string
	// HasJurist and HasConseiller are tri-state: nil ignores the filter.
	HasJurist     *bool
	HasConseiller *bool
	Ordering      string
	Page          int
	PageSize      int
	// TodayStart and TodayEnd bound the KPI counters.
	TodayStart time.Time
	TodayEnd   time.Time
}

type SearchKPI struct {
	RdvToday       int
	ContractsToday int
}

type SearchResult struct {
	Items []Lead
	Total int
	KPI   SearchKPI
}

// PlannedStatuses count as an appointment happening on the day.
var PlannedStatuses = []string{"RDV_PLANIFIE", "RDV_CONFIRME"}

var orderingColumns = map[string]string{
	"created_at":       "l.created_at",
	"appointment_date": "l.appointment_date",
	"id":               "l.id",
}

// OrderBy maps an ordering token such as "-created_at" to a SQL clause.
// Unknown tokens fall back to newest first.
func OrderBy(ordering string) (string, string) {
	desc := strings.HasPrefix(ordering, "-")
	column, ok := orderingColumns[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return "l.created_at DESC, l.id DESC", "-created_at"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch column {
	case "l.id":
		return column + " " + dir, ordering
	case "l.appointment_date":
		return column + " " + dir + " NULLS LAST, l.id " + dir, ordering
	}
	return column + " " + dir + ", l.id " + dir, ordering
}

type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *whereBuilder) addEquals(column string, value string) {
	if value == "" {
		return
	}
	w.add(column + " = " + w.arg(value))
}

func (w *whereBuilder) addRange(column string, from, to *time.Time, inclusiveTo bool) {
	if from != nil {
		w.add(column + " >= " + w.arg(*from))
	}
	if to != nil {
		op := " < "
		if inclusiveTo {
			op = " <= "
		}
		w.add(column + op + w.arg(*to))
	}
}

func (w *whereBuilder) addExists(table string, want *bool) {
	if want == nil {
		return
	}
	exists := "EXISTS (SELECT 1 FROM " + table + " x WHERE x.lead_id = l.id)"
	if *want {
		w.add(exists)
	} else {
		w.add("NOT " + exists)
	}
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

// List returns one page of leads, newest first.
func (r *Repository) List(ctx context.Context, p ListParams) (ListResult, error) {
	w := &whereBuilder{}

	if s := strings.TrimSpace(p.Search); s != "" {
		pattern := w.arg("%" + s + "%")
		w.add("(l.first_name ILIKE " + pattern + " OR l.last_name ILIKE " + pattern +
			" OR l.phone ILIKE " + pattern + " OR l.email ILIKE " + pattern + ")")
	}
	if p.Status != "" && p.Status != "TOUS" {
		w.addEquals("l.status", p.Status)
	}
	if p.DayStart != nil && p.DayEnd != nil {
		column := "l.created_at"
		if p.DateField == "appointment_date" {
			column = "l.appointment_date"
		}
		w.addRange(column, p.DayStart, p.DayEnd, false)
	}
	if p.RestrictTo != nil {
		user := w.arg(*p.RestrictTo)
		w.add("(EXISTS (SELECT 1 FROM lead_assignees a WHERE a.lead_id = l.id AND a.user_id = " + user + ")" +
			" OR EXISTS (SELECT 1 FROM lead_jurists j WHERE j.lead_id = l.id AND j.user_id = " + user + "))")
	}

	where := w.sql()

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads l"+where, w.args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	page, size := clampPage(p.Page, p.PageSize)
	query := fmt.Sprintf("SELECT %s FROM leads l%s ORDER BY l.created_at DESC, l.id DESC LIMIT %d OFFSET %d",
		leadColumns, where, size, (page-1)*size)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return ListResult{}, err
	}
	items, err := collectLeads(rows)
	if err != nil {
		return ListResult{}, err
	}
	if err := r.attachStaff(ctx, items); err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

// Search runs the advanced search and computes the KPI counters on the same filter.
func (r *Repository) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	w := &whereBuilder{}
	w.addRange("l.created_at", p.CreatedFrom, p.CreatedTo, true)
	w.addRange("l.appointment_date", p.ApptFrom, p.ApptTo, true)
	w.addEquals("l.status", p.Status)
	w.addEquals("l.dossier_status", p.DossierStatus)
	w.addExists("lead_jurists", p.HasJurist)
	w.addExists("lead_assignees", p.HasConseiller)

	where := w.sql()

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads l"+where, w.args...).Scan(&total); err != nil {
		return SearchResult{}, err
	}

	kpi, err := r.searchKPI(ctx, w, p.TodayStart, p.TodayEnd)
	if err != nil {
		return SearchResult{}, err
	}

	page, size := clampPage(p.Page, p.PageSize)
	order, _ := OrderBy(p.Ordering)
	query := fmt.Sprintf("SELECT %s FROM leads l%s ORDER BY %s LIMIT %d OFFSET %d",
		leadColumns, where, order, size, (page-1)*size)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return SearchResult{}, err
	}
	items, err := collectLeads(rows)
	if err != nil {
		return SearchResult{}, err
	}
	if err := r.attachStaff(ctx, items); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Items: items, Total: total, KPI: kpi}, nil
}

func (w *whereBuilder) clone() *whereBuilder {
	return &whereBuilder{clauses: append([]string{}, w.clauses...), args: append([]any{}, w.args...)}
}

func (r *Repository) searchKPI(ctx context.Context, base *whereBuilder, start, end time.Time) (SearchKPI, error) {
	var kpi SearchKPI

	rdv := base.clone()
	rdv.add("l.status = ANY(" + rdv.arg(PlannedStatuses) + ")")
	rdv.addRange("l.appointment_date", &start, &end, false)
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads l"+rdv.sql(), rdv.args...).Scan(&kpi.RdvToday); err != nil {
		return SearchKPI{}, err
	}

	contracts := base.clone()
	contracts.addRange("c.created_at", &start, &end, false)
	query := `SELECT COUNT(*) FROM contracts c
		JOIN clients cl ON cl.id = c.client_id
		JOIN leads l ON l.id = cl.lead_id` + contracts.sql()
	if err := r.pool.QueryRow(ctx, query, contracts.args...).Scan(&kpi.ContractsToday); err != nil {
		return SearchKPI{}, err
	}
	return kpi, nil
}

// CountByStatus returns a count for each requested status, zeros included.
func (r *Repository) CountByStatus(ctx context.Context, statuses []string) (map[string]int, error) {
	counts := make(map[string]int, len(statuses))
	for _, s := range statuses {
		counts[s] = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM leads WHERE status = ANY($1) GROUP BY status
	`, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// AppointmentsBetween lists leads in status with an appointment in [from, to).
func (r *Repository) AppointmentsBetween(ctx context.Context, status string, from, to time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.status = $1 AND l.appointment_date >= $2 AND l.appointment_date < $3
		ORDER BY l.appointment_date, l.id
	`, status, from, to)
	if err != nil {
		return nil, err
	}
	items, err := collectLeads(rows)
	if err != nil {
		return nil, err
	}
	return items, r.attachStaff(ctx, items)
}
