// Package branding loads the company profile printed on documents and
// messages: legal identity, address variants, phone and service catalogue.
// This is part of the platform layer and contains no business logic.
package branding

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultProfile []byte

// Profile is the company identity.
type Profile struct {
	Name            string   `yaml:"name"`
	LegalName       string   `yaml:"legal_name"`
	LegalForm       string   `yaml:"legal_form"`
	RCS             string   `yaml:"rcs"`
	Address         string   `yaml:"address"`
	AddressShort    string   `yaml:"address_short"`
	AddressShortest string   `yaml:"address_shortest"`
	ShortName       string   `yaml:"short_name"`
	Phone           string   `yaml:"phone"`
	PhoneDisplay    string   `yaml:"phone_display"`
	DoorCode        string   `yaml:"door_code"`
	Contact         string   `yaml:"contact"`
	Website         string   `yaml:"website"`
	LogoURL         string   `yaml:"logo_url"`
	ContractPrefix  string   `yaml:"contract_prefix"`
	InvoicePrefix   string   `yaml:"invoice_prefix"`
	VATRate         float64  `yaml:"vat_rate"`
	Services        []string `yaml:"services"`
}

// Default returns the embedded profile.
func Default() Profile {
	p, err := Parse(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("embedded branding profile is invalid: %v", err))
	}
	return p
}

// Load reads path when set and falls back to the embedded profile otherwise.
// Fields missing from the file keep their default value.
func Load(path string) (Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read branding file: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parse branding file: %w", err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Parse decodes a YAML profile.
func Parse(raw []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parse branding: %w", err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Name == "" {
		return errors.New("branding: name is required")
	}
	if p.VATRate < 0 || p.VATRate >= 1 {
		return errors.New("branding: vat_rate must be in [0,1)")
	}
	return nil
}
