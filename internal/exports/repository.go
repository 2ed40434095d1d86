package exports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadRow is one line of the lead export: the lead with its billing totals.
type LeadRow struct {
	ID              int64      `db:"id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Email           *string    `db:"email"`
	Phone           string     `db:"phone"`
	Status          string     `db:"status"`
	DossierStatus   *string    `db:"dossier_status"`
	AppointmentDate *time.Time `db:"appointment_date"`
	AppointmentType string     `db:"appointment_type"`
	CreatedAt       time.Time  `db:"created_at"`
	ClientID        *int64     `db:"client_id"`
	Contracts       int        `db:"contracts"`
	ContractedCents int64      `db:"contracted_cents"`
	PaidCents       int64      `db:"paid_cents"`
}

// Filter bounds the export on the lead creation time, [From, To).
type Filter struct {
	From   time.Time
	To     time.Time
	Status string
	Limit  int
}

const exportLeadsQuery = `
	SELECT l.id, l.first_name, l.last_name, l.email, l.phone, l.status, l.dossier_status,
		l.appointment_date, l.appointment_type, l.created_at, cl.id AS client_id,
		COALESCE(ct.contracts, 0) AS contracts,
		COALESCE(ct.contracted_cents, 0) AS contracted_cents,
		COALESCE(rc.paid_cents, 0) AS paid_cents
	FROM leads l
	LEFT JOIN clients cl ON cl.lead_id = l.id
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS contracts,
			SUM(COALESCE(c.real_amount_due_cents,
				c.amount_due_cents - ROUND(c.amount_due_cents * c.discount_percent / 100)::bigint))::bigint AS contracted_cents
		FROM contracts c WHERE c.client_id = cl.id
	) ct ON true
	LEFT JOIN LATERAL (
		SELECT SUM(r.amount_cents)::bigint AS paid_cents FROM receipts r WHERE r.client_id = cl.id
	) rc ON true
	WHERE l.created_at >= $1 AND l.created_at < $2
		AND ($3::text = '' OR l.status = $3)
	ORDER BY l.created_at, l.id
	LIMIT $4`

// Repository reads the export data set.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListLeads(ctx context.Context, f Filter) ([]LeadRow, error) {
	rows, err := r.pool.Query(ctx, exportLeadsQuery, f.From, f.To, f.Status, f.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[LeadRow])
}
