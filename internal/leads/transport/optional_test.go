package transport

import (
	"encoding/json"
	"testing"
)

func TestOptionalStringDistinguishesAbsentAndNull(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"first_name":"Jean"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.AppointmentDate.Set || req.DossierStatus.Set {
		t.Fatalf("absent fields must not be set")
	}

	if err := json.Unmarshal([]byte(`{"appointment_date":null,"dossier_status":"Dossier complet"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.AppointmentDate.Clear() {
		t.Fatalf("null must clear the appointment")
	}
	if req.DossierStatus.Value == nil || *req.DossierStatus.Value != "Dossier complet" {
		t.Fatalf("unexpected dossier status: %+v", req.DossierStatus)
	}
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var o OptionalString
	if err := json.Unmarshal([]byte(`12`), &o); err == nil {
		t.Fatalf("expected an error for a number")
	}
}
