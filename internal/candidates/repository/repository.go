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

type Candidate struct {
	ID        int64
	JobID     int64
	JobSlug   string
	JobTitle  string
	FirstName string
	LastName  string
	Email     string
	CVURL     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	JobID     int64
	FirstName string
	LastName  string
	Email     string
}

// ListFilter narrows a listing; empty fields match everything.
type ListFilter struct {
	JobSlug string
	Status  string
}

const selectCandidate = `
	SELECT c.id, c.job_id, j.slug, j.title, c.first_name, c.last_name, c.email, c.cv_url, c.status,
		c.created_at, c.updated_at
	FROM candidates c
	JOIN jobs j ON j.id = c.job_id`

const listCandidatesQuery = selectCandidate + `
	WHERE ($1 = '' OR j.slug = $1)
	  AND ($2 = '' OR c.status = $2)
	ORDER BY c.created_at DESC, c.id DESC`

func scanCandidate(row pgx.Row) (Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.JobID, &c.JobSlug, &c.JobTitle, &c.FirstName, &c.LastName, &c.Email,
		&c.CVURL, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	return c, err
}

// Create inserts an application without its CV and returns its id.
func (r *Repository) Create(ctx context.Context, p CreateParams) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO candidates (job_id, first_name, last_name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, p.JobID, p.FirstName, p.LastName, p.Email).Scan(&id)
	return id, err
}

func (r *Repository) SetCV(ctx context.Context, id int64, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE candidates SET cv_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx, selectCandidate+` WHERE c.id = $1`, id))
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, listCandidatesQuery, f.JobSlug, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE candidates SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
