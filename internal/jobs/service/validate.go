package service

import (
	"fmt"
	"unicode/utf8"

	"papex_backend/internal/jobs/transport"
	"papex_backend/platform/apperr"
	"papex_backend/platform/sanitize"
)

const (
	msgTitle        = "Le titre du poste doit contenir au moins 5 caractères."
	msgLocation     = "Le lieu de travail doit être renseigné (minimum 2 caractères)."
	msgType         = "Le type de contrat doit être renseigné (minimum 2 caractères)."
	msgDescription  = "La description courte doit contenir au moins 10 caractères."
	msgDescTooLong  = "La description courte ne doit pas dépasser 500 caractères."
	msgDiploma      = "Le diplôme requis doit contenir au moins 5 caractères."
	msgStartDate    = "La date de début doit contenir au moins 3 caractères."
	msgNoMission    = "Veuillez renseigner au moins une mission."
	msgMissionItem  = "La mission #%d doit être une chaîne de caractères valide. (minimum 5 caractères)"
	msgNoProfile    = "Veuillez renseigner au moins un élément de profil recherché."
	msgProfileItem  = "Le critère #%d du profil doit être une chaîne de caractères valide. (minimum 5 caractères)"
	maxDescription  = 500
	minListItemSize = 5
)

// normalize strips markup from every provided field in place and validates it. On
// creation the core fields are required.
func normalize(req *transport.JobRequest, create bool) error {
	fields := apperr.FieldErrors{}

	checkMin(fields, "title", req.Title, 5, msgTitle, create)
	checkMin(fields, "location", req.Location, 2, msgLocation, create)
	checkMin(fields, "type", req.Type, 2, msgType, create)
	checkMin(fields, "description", req.Description, 10, msgDescription, create)
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > maxDescription {
		fields.Add("description", msgDescTooLong)
	}
	checkOptional(fields, "diploma", req.Diploma, 5, msgDiploma)
	checkOptional(fields, "start_date", req.StartDate, 3, msgStartDate)

	req.Missions = checkList(fields, "missions", req.Missions, msgNoMission, msgMissionItem, create)
	req.Profile = checkList(fields, "profile", req.Profile, msgNoProfile, msgProfileItem, create)

	if !fields.Empty() {
		return apperr.Fields(fields)
	}
	return nil
}

func checkMin(fields apperr.FieldErrors, name string, value *string, minLen int, msg string, required bool) {
	if value == nil {
		if required {
			fields.Add(name, msg)
		}
		return
	}
	*value = sanitize.Text(*value)
	if utf8.RuneCountInString(*value) < minLen {
		fields.Add(name, msg)
	}
}

// checkOptional accepts an empty value, which clears the field.
func checkOptional(fields apperr.FieldErrors, name string, value *string, minLen int, msg string) {
	if value == nil {
		return
	}
	*value = sanitize.Text(*value)
	if *value != "" && utf8.RuneCountInString(*value) < minLen {
		fields.Add(name, msg)
	}
}

func checkList(fields apperr.FieldErrors, name string, items []string, emptyMsg, itemMsg string, required bool) []string {
	if items == nil {
		if required {
			fields.Add(name, emptyMsg)
		}
		return nil
	}
	cleaned := make([]string, 0, len(items))
	for i, item := range items {
		s := sanitize.Text(item)
		if utf8.RuneCountInString(s) < minListItemSize {
			fields.Add(name, fmt.Sprintf(itemMsg, i+1))
			continue
		}
		cleaned = append(cleaned, s)
	}
	if len(items) == 0 {
		fields.Add(name, emptyMsg)
	}
	return cleaned
}
