package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Client struct {
	ID          int64
	LeadID      int64
	Address     string
	PostalCode  string
	City        string
	Nationality string
	BirthDate   *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientFields holds optional values; nil fields keep their stored value.
type ClientFields struct {
	Address     *string
	PostalCode  *string
	City        *string
	Nationality *string
	BirthDate   *time.Time
	Notes       *string
}

type Document struct {
	ID        int64
	ClientID  int64
	Name      string
	FileURL   string
	CreatedAt time.Time
}

const clientColumns = `id, lead_id, address, postal_code, city, nationality, birth_date, notes, created_at, updated_at`

const upsertClientQuery = `
	INSERT INTO clients (lead_id, address, postal_code, city, nationality, birth_date, notes)
	VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), $6::date, COALESCE($7, ''))
	ON CONFLICT (lead_id) DO UPDATE SET
		address     = COALESCE($2, clients.address),
		postal_code = COALESCE($3, clients.postal_code),
		city        = COALESCE($4, clients.city),
		nationality = COALESCE($5, clients.nationality),
		birth_date  = COALESCE($6::date, clients.birth_date),
		notes       = COALESCE($7, clients.notes),
		updated_at  = now()
	RETURNING ` + clientColumns + `, (xmax = 0) AS inserted`

func scanClient(row pgx.Row, extra ...any) (Client, error) {
	var c Client
	dest := append([]any{&c.ID, &c.LeadID, &c.Address, &c.PostalCode, &c.City, &c.Nationality, &c.BirthDate,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

// UpsertForLead creates the client file of a lead or updates the existing
// one. inserted reports whether the row is new.
func (r *Repository) UpsertForLead(ctx context.Context, leadID int64, f ClientFields) (Client, bool, error) {
	var inserted bool
	c, err := scanClient(r.pool.QueryRow(ctx, upsertClientQuery,
		leadID, f.Address, f.PostalCode, f.City, f.Nationality, f.BirthDate, f.Notes), &inserted)
	return c, inserted, err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

func (r *Repository) GetByLeadID(ctx context.Context, leadID int64) (Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE lead_id = $1`, leadID))
}

func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateDocument(ctx context.Context, clientID int64, name, url string) (Document, error) {
	var d Document
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_documents (client_id, name, file_url)
		VALUES ($1, $2, $3)
		RETURNING id, client_id, name, file_url, created_at`, clientID, name, url).
		Scan(&d.ID, &d.ClientID, &d.Name, &d.FileURL, &d.CreatedAt)
	return d, err
}

func (r *Repository) ListDocuments(ctx context.Context, clientID int64) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, name, file_url, created_at
		FROM client_documents WHERE client_id = $1
		ORDER BY created_at, id`, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.ID, &d.ClientID, &d.Name, &d.FileURL, &d.CreatedAt)
		return d, err
	})
}
