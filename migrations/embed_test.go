package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEveryMigrationHasUpAndDown(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, name := range names {
		body, err := fs.ReadFile(FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		text := string(body)
		if !strings.Contains(text, "-- +goose Up") || !strings.Contains(text, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", name)
		}
	}
}

func TestSlotQuotaConstraintIsDeclared(t *testing.T) {
	body, err := fs.ReadFile(FS, "00002_leads.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "CHECK (booked <= capacity)") {
		t.Fatal("slot_quotas must enforce booked <= capacity at the database level")
	}
}
