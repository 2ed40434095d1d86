package validator

import (
	"testing"

	"papex_backend/platform/apperr"
)

type sample struct {
	Title string   `json:"title" validate:"required,min=5"`
	Slug  string   `json:"slug" validate:"omitempty,slug"`
	Items []string `json:"items" validate:"min=1"`
}

func TestCheckReturnsFieldMessages(t *testing.T) {
	v := New()
	err := v.Check(sample{Title: "abc", Slug: "Not A Slug"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	fields := err.(*apperr.Error).Details.(apperr.FieldErrors)
	if got := fields["title"]; len(got) != 1 || got[0] != "Au moins 5 caractères requis." {
		t.Fatalf("unexpected title messages %v", got)
	}
	if _, ok := fields["slug"]; !ok {
		t.Fatal("expected slug error")
	}
	if got := fields["items"]; len(got) != 1 || got[0] != "Au moins 1 élément(s) requis." {
		t.Fatalf("unexpected items messages %v", got)
	}
}

func TestCheckPassesValidStruct(t *testing.T) {
	v := New()
	if err := v.Check(sample{Title: "Juriste", Slug: "juriste-paris", Items: []string{"x"}}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
