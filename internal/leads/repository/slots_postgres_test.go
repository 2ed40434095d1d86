package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"papex_backend/migrations"
	"papex_backend/platform/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Set PAPEX_TEST_DATABASE_URL to a disposable database to run these tests.
const testDatabaseEnv = "PAPEX_TEST_DATABASE_URL"

type testDatabase string

func (d testDatabase) GetDatabaseURL() string { return string(d) }

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(testDatabaseEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := testDatabase(url)
	if err := db.RunMigrations(ctx, cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// uniqueSlot picks a far-future minute so parallel runs never share a quota row.
func uniqueSlot(t *testing.T, pool *pgxpool.Pool) time.Time {
	t.Helper()
	offset := time.Duration(time.Now().UnixNano()%5_000_000) * time.Minute
	slot := time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset)
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM leads WHERE appointment_date = $1`, slot)
		_, _ = pool.Exec(ctx, `DELETE FROM slot_quotas WHERE start_at = $1`, slot)
	})
	return slot
}

func TestReserveAndCreateConcurrentBookingsPostgres(t *testing.T) {
	pool := openTestPool(t)
	repo := New(pool)
	slot := uniqueSlot(t, pool)
	ctx := context.Background()

	const capacity, attempts = 3, 12
	if _, err := repo.SetCapacity(ctx, slot, capacity); err != nil {
		t.Fatalf("set capacity: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		full    int
		unknown []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.ReserveAndCreate(ctx, slot, 1, CreateLeadParams{
				FirstName:       "Jean",
				LastName:        "Dupont",
				Phone:           "+33612345678",
				AppointmentDate: &slot,
				AppointmentType: "RDV_PRESENTIEL",
				Status:          "RDV_A_CONFIRMER",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrSlotFull):
				full++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(unknown) > 0 {
		t.Fatalf("unexpected errors: %v", unknown)
	}
	if ok != capacity || full != attempts-capacity {
		t.Fatalf("expected %d bookings and %d full, got %d and %d", capacity, attempts-capacity, ok, full)
	}

	var booked, leads int
	if err := pool.QueryRow(ctx, `SELECT booked FROM slot_quotas WHERE start_at = $1`, slot).Scan(&booked); err != nil {
		t.Fatalf("read quota: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE appointment_date = $1`, slot).Scan(&leads); err != nil {
		t.Fatalf("count leads: %v", err)
	}
	if booked != capacity || leads != capacity {
		t.Fatalf("booked=%d leads=%d, want %d each", booked, leads, capacity)
	}
}

func TestSetCapacityRefusesBelowBookedPostgres(t *testing.T) {
	pool := openTestPool(t)
	repo := New(pool)
	slot := uniqueSlot(t, pool)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := repo.ReserveAndCreate(ctx, slot, 2, CreateLeadParams{
			FirstName: "Anne", LastName: "Martin", AppointmentDate: &slot,
			AppointmentType: "RDV_PRESENTIEL", Status: "RDV_A_CONFIRMER",
		}); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	if _, err := repo.SetCapacity(ctx, slot, 1); !errors.Is(err, ErrCapacityBelowBooked) {
		t.Fatalf("expected ErrCapacityBelowBooked, got %v", err)
	}
	got, err := repo.SetCapacity(ctx, slot, 4)
	if err != nil {
		t.Fatalf("raise capacity: %v", err)
	}
	if got.Booked != 2 || got.Remaining() != 2 {
		t.Fatalf("unexpected slot %+v", got)
	}
}
