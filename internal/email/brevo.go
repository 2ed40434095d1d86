package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoError is returned when the Brevo API answers with a non-2xx status.
type BrevoError struct {
	Status int
	Body   string
}

func (e *BrevoError) Error() string {
	return fmt.Sprintf("brevo: status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *BrevoError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// BrevoTransport posts rendered messages to the Brevo transactional API.
type BrevoTransport struct {
	apiKey   string
	envelope Envelope
	endpoint string
	client   *http.Client
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type brevoPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Bcc         []brevoAddress `json:"bcc,omitempty"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Attachment  []brevoFile    `json:"attachment,omitempty"`
}

func NewBrevoTransport(apiKey string, envelope Envelope, client *http.Client) *BrevoTransport {
	return &BrevoTransport{apiKey: apiKey, envelope: envelope, endpoint: brevoEndpoint, client: client}
}

// WithEndpoint overrides the API URL.
func (b *BrevoTransport) WithEndpoint(url string) *BrevoTransport {
	b.endpoint = url
	return b
}

func (b *BrevoTransport) payload(toEmail, subject, htmlContent string, attachments []Attachment) brevoPayload {
	p := brevoPayload{
		Sender:      brevoAddress{Name: b.envelope.FromName, Email: b.envelope.FromAddress},
		To:          []brevoAddress{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	if b.envelope.ReplyTo != "" {
		p.ReplyTo = &brevoAddress{Email: b.envelope.ReplyTo}
	}
	if bcc := b.envelope.archiveFor(toEmail); bcc != "" {
		p.Bcc = []brevoAddress{{Email: bcc}}
	}
	for _, att := range attachments {
		p.Attachment = append(p.Attachment, brevoFile{
			Name:    att.FileName,
			Content: base64.StdEncoding.EncodeToString(att.Content),
		})
	}
	return p
}

func (b *BrevoTransport) Send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	body, err := json.Marshal(b.payload(toEmail, subject, htmlContent, attachments))
	if err != nil {
		return fmt.Errorf("brevo: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &BrevoError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
}
