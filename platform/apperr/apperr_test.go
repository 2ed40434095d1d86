package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
		KindUnknown:      http.StatusBadRequest,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Fatalf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestGetKindLooksThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reserve slot: %w", Conflict("Créneau complet. Veuillez choisir un autre horaire."))
	if !Is(err, KindConflict) {
		t.Fatalf("expected wrapped conflict to be detected, got kind %d", GetKind(err))
	}
}

func TestFieldsCarriesDetails(t *testing.T) {
	fields := FieldErrors{}
	fields.Add("appointment_date", "Champ requis.")
	err := Fields(fields)
	details, ok := err.Details.(FieldErrors)
	if !ok || details["appointment_date"][0] != "Champ requis." {
		t.Fatalf("unexpected details %#v", err.Details)
	}
}
