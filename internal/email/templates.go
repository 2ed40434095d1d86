package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"papex_backend/platform/branding"
)

//go:embed templates/*.html
var templateFS embed.FS

type companyData struct {
	Name      string
	LegalForm string
	RCS       string
	Address   string
	Contact   string
	Phone     string
	DoorCode  string
	LogoURL   string
	Website   string
	Copyright string
}

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
	FirstName  string
	LastName   string
	Company    companyData
}

type appointmentEmailData struct {
	baseEmailData
	Appointment Appointment
}

type juristAssignedEmailData struct {
	baseEmailData
	JuristName string
}

type dossierStatusEmailData struct {
	baseEmailData
	Status string
}

type contractEmailData struct {
	baseEmailData
	Reference      string
	HasAttachments bool
}

type receiptsEmailData struct {
	baseEmailData
	Count int
}

func newCompanyData(p branding.Profile, now time.Time) companyData {
	return companyData{
		Name:      p.Name,
		LegalForm: p.LegalForm,
		RCS:       p.RCS,
		Address:   p.Address,
		Contact:   p.Contact,
		Phone:     p.PhoneDisplay,
		DoorCode:  p.DoorCode,
		LogoURL:   p.LogoURL,
		Website:   p.Website,
		Copyright: fmt.Sprintf("© %d %s. Tous droits réservés.", now.Year(), p.Name),
	}
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
