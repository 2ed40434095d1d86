package management

import (
	"context"
	"strconv"
	"strings"
	"time"

	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/transport"
)

var (
	truthy = map[string]bool{"avec": true, "oui": true, "with": true, "true": true, "1": true}
	falsy  = map[string]bool{"sans": true, "non": true, "without": true, "false": true, "0": true}
)

// Search runs the advanced lead search. Unparseable filters are ignored.
func (s *Service) Search(ctx context.Context, req transport.SearchLeadsRequest) (transport.SearchResponse, error) {
	params := repository.SearchParams{
		CreatedFrom:   parseBound(req.DateFrom, false),
		CreatedTo:     parseBound(req.DateTo, true),
		ApptFrom:      parseBound(req.ApptFrom, false),
		ApptTo:        parseBound(req.ApptTo, true),
		Status:        firstNonEmpty(req.Status, req.StatusCode),
		DossierStatus: firstNonEmpty(req.DossierStatus, req.DossierCode),
		HasJurist:     parsePresence(req.HasJurist),
		HasConseiller: parsePresence(req.HasConseiller),
		Page:          atoiOr(req.Page, 1),
		PageSize:      atoiOr(req.PageSize, 20),
	}
	params.Page, params.PageSize = pageOrDefault(params.Page, params.PageSize)
	_, params.Ordering = repository.OrderBy(strings.TrimSpace(req.Ordering))
	params.TodayStart, params.TodayEnd = domain.DayBounds(s.now())

	result, err := s.repo.Search(ctx, params)
	if err != nil {
		return transport.SearchResponse{}, err
	}
	return transport.SearchResponse{
		Total:    result.Total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Ordering: params.Ordering,
		Items:    toSearchItems(result.Items),
		KPI: transport.SearchKPI{
			RdvToday:       result.KPI.RdvToday,
			ContractsToday: result.KPI.ContractsToday,
		},
	}, nil
}

// parseBound reads a date or datetime. A bare date used as an upper bound
// covers the whole day.
func parseBound(raw string, upper bool) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if day, err := domain.ParseDay(raw); err == nil {
		if upper {
			_, end := domain.DayBounds(day)
			end = end.Add(-time.Microsecond)
			return &end
		}
		return &day
	}
	if t, err := domain.ParseAppointment(raw); err == nil {
		return &t
	}
	return nil
}

func parsePresence(raw string) *bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[v]:
		b := true
		return &b
	case falsy[v]:
		b := false
		return &b
	default:
		return nil
	}
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
