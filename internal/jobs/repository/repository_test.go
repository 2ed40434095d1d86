package repository

import (
	"strings"
	"testing"
)

func TestUpdateKeepsAbsentFields(t *testing.T) {
	for _, fragment := range []string{"COALESCE($2, title)", "COALESCE($6, missions)", "COALESCE($10, is_active)"} {
		if !strings.Contains(updateJobQuery, fragment) {
			t.Fatalf("update query missing %q", fragment)
		}
	}
	if !strings.Contains(updateJobQuery, "NULLIF($8, '')") {
		t.Fatalf("an empty diploma must clear the column")
	}
}

func TestToggleFlipsInPlace(t *testing.T) {
	if !strings.Contains(toggleJobQuery, "is_active = NOT is_active") {
		t.Fatalf("toggle must flip the flag atomically")
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
