package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrSlugTaken = errors.New("slug already used")

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Job struct {
	ID          int64
	Slug        string
	Title       string
	Location    string
	Type        string
	Description string
	Missions    []string
	Profile     []string
	Diploma     *string
	StartDate   *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateJobParams struct {
	Slug        string
	Title       string
	Location    string
	Type        string
	Description string
	Missions    []string
	Profile     []string
	Diploma     *string
	StartDate   *string
	IsActive    bool
}

// UpdateJobParams holds optional changes; nil fields are left untouched.
type UpdateJobParams struct {
	Title       *string
	Location    *string
	Type        *string
	Description *string
	Missions    []string
	Profile     []string
	Diploma     *string
	StartDate   *string
	IsActive    *bool
}

const jobColumns = `id, slug, title, location, type, description, missions, profile, diploma, start_date,
	is_active, created_at, updated_at`

const insertJobQuery = `
	INSERT INTO jobs (slug, title, location, type, description, missions, profile, diploma, start_date, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
	RETURNING ` + jobColumns

const updateJobQuery = `
	UPDATE jobs SET
		title       = COALESCE($2, title),
		location    = COALESCE($3, location),
		type        = COALESCE($4, type),
		description = COALESCE($5, description),
		missions    = COALESCE($6, missions),
		profile     = COALESCE($7, profile),
		diploma     = CASE WHEN $8::text IS NULL THEN diploma ELSE NULLIF($8, '') END,
		start_date  = CASE WHEN $9::text IS NULL THEN start_date ELSE NULLIF($9, '') END,
		is_active   = COALESCE($10, is_active),
		updated_at  = now()
	WHERE id = $1
	RETURNING ` + jobColumns

const toggleJobQuery = `
	UPDATE jobs SET is_active = NOT is_active, updated_at = now()
	WHERE id = $1
	RETURNING ` + jobColumns

const slugExistsQuery = `SELECT EXISTS (SELECT 1 FROM jobs WHERE slug = $1)`

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Slug, &j.Title, &j.Location, &j.Type, &j.Description, &j.Missions, &j.Profile,
		&j.Diploma, &j.StartDate, &j.IsActive, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (r *Repository) Create(ctx context.Context, p CreateJobParams) (Job, error) {
	job, err := scanJob(r.pool.QueryRow(ctx, insertJobQuery,
		p.Slug, p.Title, p.Location, p.Type, p.Description, nonNil(p.Missions), nonNil(p.Profile),
		p.Diploma, p.StartDate, p.IsActive))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return Job{}, ErrSlugTaken
	}
	return job, err
}

func (r *Repository) Update(ctx context.Context, id int64, p UpdateJobParams) (Job, error) {
	return scanJob(r.pool.QueryRow(ctx, updateJobQuery,
		id, p.Title, p.Location, p.Type, p.Description, p.Missions, p.Profile, p.Diploma, p.StartDate, p.IsActive))
}

func (r *Repository) Toggle(ctx context.Context, id int64) (Job, error) {
	return scanJob(r.pool.QueryRow(ctx, toggleJobQuery, id))
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE slug = $1`, slug))
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

// List returns jobs newest first, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Job, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs
		WHERE ($1 = false OR is_active) ORDER BY created_at DESC, id DESC`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, slugExistsQuery, slug).Scan(&exists)
	return exists, err
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
