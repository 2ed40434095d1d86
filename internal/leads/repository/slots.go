package repository

import (
	"context"
	"errors"
	"time"

	"papex_backend/platform/db"

	"github.com/jackc/pgx/v5"
)

// ErrSlotFull is returned when the slot has no remaining capacity.
var ErrSlotFull = errors.New("slot is full")

// ErrCapacityBelowBooked is returned when a new capacity would drop under the booked count.
var ErrCapacityBelowBooked = errors.New("capacity below booked count")

type Slot struct {
	ID        int64
	StartAt   time.Time
	Capacity  int
	Booked    int
	UpdatedAt time.Time
}

func (s Slot) Remaining() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

const ensureSlotQuery = `
	INSERT INTO slot_quotas (start_at, capacity, booked)
	VALUES ($1, $2, 0)
	ON CONFLICT (start_at) DO NOTHING`

// The predicate on booked makes the increment atomic: concurrent callers
// serialize on the row lock and only those that still see room get a row back.
const reserveSlotQuery = `
	UPDATE slot_quotas
	SET booked = booked + 1, updated_at = now()
	WHERE start_at = $1 AND booked < capacity
	RETURNING id`

// ReserveAndCreate books one seat in the slot starting at startAt and inserts
// the lead in the same transaction. A missing slot row is created with
// defaultCapacity first.
func (r *Repository) ReserveAndCreate(ctx context.Context, startAt time.Time, defaultCapacity int, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureSlotQuery, startAt, defaultCapacity); err != nil {
			return err
		}

		var slotID int64
		if err := tx.QueryRow(ctx, reserveSlotQuery, startAt).Scan(&slotID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrSlotFull
			}
			return err
		}

		created, err := insertLead(ctx, tx, params)
		if err != nil {
			return err
		}
		lead = created
		return nil
	})
	if err != nil {
		return Lead{}, err
	}
	lead.Assignees = []StaffRef{}
	lead.Jurists = []StaffRef{}
	return lead, nil
}

// ListSlots returns the quota rows starting within [from, to).
func (r *Repository) ListSlots(ctx context.Context, from, to time.Time) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, start_at, capacity, booked, updated_at
		FROM slot_quotas
		WHERE start_at >= $1 AND start_at < $2
		ORDER BY start_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]Slot, 0)
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.StartAt, &s.Capacity, &s.Booked, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// SetCapacity upserts the capacity of a slot. It refuses to go under the
// number of seats already booked.
func (r *Repository) SetCapacity(ctx context.Context, startAt time.Time, capacity int) (Slot, error) {
	var s Slot
	err := r.pool.QueryRow(ctx, `
		INSERT INTO slot_quotas (start_at, capacity, booked)
		VALUES ($1, $2, 0)
		ON CONFLICT (start_at) DO UPDATE
			SET capacity = EXCLUDED.capacity, updated_at = now()
			WHERE slot_quotas.booked <= EXCLUDED.capacity
		RETURNING id, start_at, capacity, booked, updated_at
	`, startAt, capacity).Scan(&s.ID, &s.StartAt, &s.Capacity, &s.Booked, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Slot{}, ErrCapacityBelowBooked
	}
	return s, err
}
