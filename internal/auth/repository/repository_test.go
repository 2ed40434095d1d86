package repository

import (
	"strings"
	"testing"
)

func TestListActiveUsersQueryFiltersInactive(t *testing.T) {
	query := strings.ToLower(listActiveUsersQuery)
	for _, fragment := range []string{"is_active = true", "role = $1"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected fragment %q in list query", fragment)
		}
	}
}

func TestListActiveByIDsQueryRestrictsRoles(t *testing.T) {
	query := strings.ToLower(listActiveByIDsQuery)
	for _, fragment := range []string{"id = any($1)", "is_active = true", "role = any($2)"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected fragment %q in id lookup query", fragment)
		}
	}
}

func TestCreateUserLowercasesEmail(t *testing.T) {
	if !strings.Contains(createUserQuery, "lower($1)") {
		t.Fatal("emails must be stored lowercased")
	}
}
