package notification

import (
	"encoding/json"
	"fmt"

	"papex_backend/internal/events"
)

// Kind names the message a lead receives.
type Kind string

const (
	KindConfirmation   Kind = "appointment_confirmation"
	KindPlanned        Kind = "appointment_planned"
	KindReminder       Kind = "appointment_reminder"
	KindMissed         Kind = "appointment_missed"
	KindJuristAssigned Kind = "jurist_assigned"
	KindFormulaire     Kind = "formulaire"
	KindDossierStatus  Kind = "dossier_status"
	KindAccountCreated Kind = "account_created"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one notification for one lead on one channel. It is also the
// queued task payload, so it carries everything needed to render it.
type Message struct {
	Kind       Kind                `json:"kind"`
	Channel    Channel             `json:"channel"`
	Lead       events.LeadSnapshot `json:"lead"`
	JuristName string              `json:"juristName,omitempty"`
	ClientID   int64               `json:"clientId,omitempty"`
}

func (m Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("parse notification: %w", err)
	}
	if m.Kind == "" || m.Channel == "" {
		return Message{}, fmt.Errorf("parse notification: kind and channel are required")
	}
	return m, nil
}
