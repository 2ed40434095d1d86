package repository

import (
	"context"
	"errors"
	"time"

	"papex_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrEmailTaken = errors.New("email already used by another lead")

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StaffRef is a user attached to a lead as advisor or jurist.
type StaffRef struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Role      string
}

type Lead struct {
	ID               int64
	FirstName        string
	LastName         string
	Email            *string
	Phone            string
	AppointmentDate  *time.Time
	AppointmentType  string
	Status           string
	DossierStatus    *string
	LastReminderSent *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Assignees []StaffRef
	Jurists   []StaffRef
}

type CreateLeadParams struct {
	FirstName       string
	LastName        string
	Email           *string
	Phone           string
	AppointmentDate *time.Time
	AppointmentType string
	Status          string
	DossierStatus   *string
}

// UpdateLeadParams holds optional changes; nil fields are left untouched.
type UpdateLeadParams struct {
	FirstName          *string
	LastName           *string
	Email              *string
	Phone              *string
	AppointmentDate    *time.Time
	ClearAppointment   bool
	AppointmentType    *string
	Status             *string
	DossierStatus      *string
	ClearDossierStatus bool
}

const leadColumns = `l.id, l.first_name, l.last_name, l.email, l.phone, l.appointment_date, l.appointment_type,
	l.status, l.dossier_status, l.last_reminder_sent, l.created_at, l.updated_at`

const insertLeadQuery = `
	INSERT INTO leads AS l (first_name, last_name, email, phone, appointment_date, appointment_type, status, dossier_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + leadColumns

const updateLeadQuery = `
	UPDATE leads AS l SET
		first_name       = COALESCE($2, l.first_name),
		last_name        = COALESCE($3, l.last_name),
		email            = COALESCE($4, l.email),
		phone            = COALESCE($5, l.phone),
		appointment_date = CASE WHEN $6 THEN NULL ELSE COALESCE($7, l.appointment_date) END,
		appointment_type = COALESCE($8, l.appointment_type),
		status           = COALESCE($9, l.status),
		dossier_status   = CASE WHEN $10 THEN NULL ELSE COALESCE($11, l.dossier_status) END,
		last_reminder_sent = CASE WHEN $7::timestamptz IS NOT NULL AND $7::timestamptz IS DISTINCT FROM l.appointment_date
			THEN NULL ELSE l.last_reminder_sent END,
		updated_at       = now()
	WHERE l.id = $1
	RETURNING ` + leadColumns

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.AppointmentDate,
		&l.AppointmentType, &l.Status, &l.DossierStatus, &l.LastReminderSent, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()
	leads := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func insertLead(ctx context.Context, q db.DBTX, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(q.QueryRow(ctx, insertLeadQuery,
		params.FirstName, params.LastName, params.Email, params.Phone,
		params.AppointmentDate, params.AppointmentType, params.Status, params.DossierStatus))
	return lead, mapWriteError(err)
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return insertLead(ctx, r.pool, params)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = $1`, id))
	if err != nil {
		return Lead{}, err
	}
	leads := []Lead{lead}
	if err := r.attachStaff(ctx, leads); err != nil {
		return Lead{}, err
	}
	return leads[0], nil
}

// EmailInUse reports whether another lead already uses email (case-insensitive).
func (r *Repository) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE lower(email) = lower($1) AND id <> $2)
	`, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repository) Update(ctx context.Context, id int64, p UpdateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, updateLeadQuery, id,
		p.FirstName, p.LastName, p.Email, p.Phone,
		p.ClearAppointment, p.AppointmentDate, p.AppointmentType, p.Status,
		p.ClearDossierStatus, p.DossierStatus))
	if err != nil {
		return Lead{}, mapWriteError(err)
	}
	leads := []Lead{lead}
	if err := r.attachStaff(ctx, leads); err != nil {
		return Lead{}, err
	}
	return leads[0], nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAssignees attaches staff to a lead; existing links are kept.
func (r *Repository) AddAssignees(ctx context.Context, leadID int64, userIDs []uuid.UUID) error {
	return r.link(ctx, "lead_assignees", leadID, userIDs)
}

func (r *Repository) RemoveAssignees(ctx context.Context, leadID int64, userIDs []uuid.UUID) error {
	return r.unlink(ctx, "lead_assignees", leadID, userIDs)
}

// AddJurists attaches jurists and returns the ids that were not linked before.
func (r *Repository) AddJurists(ctx context.Context, leadID int64, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		INSERT INTO lead_jurists (lead_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
		RETURNING user_id
	`, leadID, userIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (r *Repository) RemoveJurists(ctx context.Context, leadID int64, userIDs []uuid.UUID) error {
	return r.unlink(ctx, "lead_jurists", leadID, userIDs)
}

func (r *Repository) link(ctx context.Context, table string, leadID int64, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO `+table+` (lead_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, leadID, userIDs)
	return err
}

func (r *Repository) unlink(ctx context.Context, table string, leadID int64, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE lead_id = $1 AND user_id = ANY($2)`, leadID, userIDs)
	return err
}

const staffForLeadsQuery = `
	SELECT x.lead_id, x.kind, u.id, u.first_name, u.last_name, u.email, u.role
	FROM (
		SELECT lead_id, user_id, 'assignee' AS kind FROM lead_assignees WHERE lead_id = ANY($1)
		UNION ALL
		SELECT lead_id, user_id, 'jurist' AS kind FROM lead_jurists WHERE lead_id = ANY($1)
	) x
	JOIN users u ON u.id = x.user_id
	ORDER BY u.last_name, u.first_name`

// attachStaff fills Assignees and Jurists with one query for the whole page.
func (r *Repository) attachStaff(ctx context.Context, leads []Lead) error {
	if len(leads) == 0 {
		return nil
	}
	ids := make([]int64, len(leads))
	index := make(map[int64]int, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
		index[l.ID] = i
		leads[i].Assignees = []StaffRef{}
		leads[i].Jurists = []StaffRef{}
	}

	rows, err := r.pool.Query(ctx, staffForLeadsQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var leadID int64
		var kind string
		var s StaffRef
		if err := rows.Scan(&leadID, &kind, &s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Role); err != nil {
			return err
		}
		i := index[leadID]
		if kind == "jurist" {
			leads[i].Jurists = append(leads[i].Jurists, s)
		} else {
			leads[i].Assignees = append(leads[i].Assignees, s)
		}
	}
	return rows.Err()
}
