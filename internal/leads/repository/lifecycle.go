package repository

import (
	"context"
	"time"
)

// Rows already claimed by a concurrent run are skipped, and the flag is set in
// the same statement, so a lead is returned by at most one claim.
const claimRemindersQuery = `
	UPDATE leads AS l
	SET last_reminder_sent = $1, updated_at = now()
	WHERE l.id IN (
		SELECT id FROM leads
		WHERE last_reminder_sent IS NULL
			AND status = ANY($2)
			AND appointment_date >= $3
			AND appointment_date < $4
		ORDER BY appointment_date
		FOR UPDATE SKIP LOCKED
	)
	RETURNING ` + leadColumns

const markAbsentQuery = `
	UPDATE leads AS l
	SET status = 'ABSENT', updated_at = now()
	WHERE l.status = 'RDV_CONFIRME' AND l.appointment_date < $1
	RETURNING ` + leadColumns

// ClaimReminders flags and returns the leads due for a reminder in [from, to).
func (r *Repository) ClaimReminders(ctx context.Context, now time.Time, statuses []string, from, to time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, claimRemindersQuery, now, statuses, from, to)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// MarkAbsent moves confirmed leads whose appointment is before now to ABSENT.
func (r *Repository) MarkAbsent(ctx context.Context, now time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, markAbsentQuery, now)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// CreatedBetween lists leads created in [from, to) with one of statuses.
func (r *Repository) CreatedBetween(ctx context.Context, statuses []string, from, to time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.status = ANY($1) AND l.created_at >= $2 AND l.created_at < $3
		ORDER BY l.created_at
	`, statuses, from, to)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}
