package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotStore reserves appointment slots.
type SlotStore interface {
	ReserveAndCreate(ctx context.Context, startAt time.Time, defaultCapacity int, params CreateLeadParams) (Lead, error)
	ListSlots(ctx context.Context, from, to time.Time) ([]Slot, error)
	SetCapacity(ctx context.Context, startAt time.Time, capacity int) (Slot, error)
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
}

// LeadReader covers read-only lead queries.
type LeadReader interface {
	GetByID(ctx context.Context, id int64) (Lead, error)
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, p ListParams) (ListResult, error)
	Search(ctx context.Context, p SearchParams) (SearchResult, error)
	CountByStatus(ctx context.Context, statuses []string) (map[string]int, error)
	AppointmentsBetween(ctx context.Context, status string, from, to time.Time) ([]Lead, error)
}

// LeadWriter covers lead mutations made by staff.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id int64, p UpdateLeadParams) (Lead, error)
	Delete(ctx context.Context, id int64) error
	AddAssignees(ctx context.Context, leadID int64, userIDs []uuid.UUID) error
	RemoveAssignees(ctx context.Context, leadID int64, userIDs []uuid.UUID) error
	AddJurists(ctx context.Context, leadID int64, userIDs []uuid.UUID) ([]uuid.UUID, error)
	RemoveJurists(ctx context.Context, leadID int64, userIDs []uuid.UUID) error
}

// LifecycleStore is used by the scheduled jobs.
type LifecycleStore interface {
	ClaimReminders(ctx context.Context, now time.Time, statuses []string, from, to time.Time) ([]Lead, error)
	MarkAbsent(ctx context.Context, now time.Time) ([]Lead, error)
	CreatedBetween(ctx context.Context, statuses []string, from, to time.Time) ([]Lead, error)
}

// LeadsRepository is the full set of lead persistence operations.
type LeadsRepository interface {
	SlotStore
	LeadReader
	LeadWriter
	LifecycleStore
}

var _ LeadsRepository = (*Repository)(nil)
