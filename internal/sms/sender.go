// Package sms sends appointment text messages through the OVH SMS gateway.
package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/ovh/go-ovh/ovh"

	"papex_backend/platform/config"
	"papex_backend/platform/logger"
)

// ErrNoReceivers is returned when Send is called without a phone number.
var ErrNoReceivers = errors.New("sms: no receivers")

type Sender interface {
	Send(ctx context.Context, message string, receivers ...string) error
}

// OVHSender posts SMS jobs to /sms/{service}/jobs.
type OVHSender struct {
	client  *ovh.Client
	service string
	sender  string
	log     *logger.Logger
}

type ovhJobRequest struct {
	Sender    string   `json:"sender,omitempty"`
	Message   string   `json:"message"`
	Receivers []string `json:"receivers"`
	NoStop    bool     `json:"noStopClause"`
}

type ovhJobResponse struct {
	IDs                 []int64  `json:"ids"`
	InvalidReceivers    []string `json:"invalidReceivers"`
	TotalCreditsRemoved float64  `json:"totalCreditsRemoved"`
}

func NewOVHSender(client *ovh.Client, service, sender string, log *logger.Logger) *OVHSender {
	return &OVHSender{client: client, service: service, sender: sender, log: log}
}

func (s *OVHSender) Send(ctx context.Context, message string, receivers ...string) error {
	if len(receivers) == 0 {
		return ErrNoReceivers
	}

	var res ovhJobResponse
	req := ovhJobRequest{Sender: s.sender, Message: message, Receivers: receivers, NoStop: true}
	if err := s.client.PostWithContext(ctx, fmt.Sprintf("/sms/%s/jobs", s.service), req, &res); err != nil {
		return fmt.Errorf("ovh sms job: %w", err)
	}
	if len(res.InvalidReceivers) > 0 {
		return fmt.Errorf("ovh sms job: invalid receivers %v", res.InvalidReceivers)
	}

	s.log.Info("sms sent", "receivers", len(receivers), "job_ids", res.IDs, "credits", res.TotalCreditsRemoved)
	return nil
}

// NoopSender logs messages instead of sending them.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) NoopSender {
	return NoopSender{log: log}
}

func (n NoopSender) Send(_ context.Context, message string, receivers ...string) error {
	if n.log != nil {
		n.log.Info("sms disabled, message not sent", "receivers", len(receivers), "length", len(message))
	}
	return nil
}

// NewOVHClient builds a go-ovh client from the shared OVH credentials.
func NewOVHClient(endpoint, appKey, appSecret, consumerKey string) (*ovh.Client, error) {
	if endpoint == "" {
		endpoint = ovh.OvhEU
	}
	client, err := ovh.NewClient(endpoint, appKey, appSecret, consumerKey)
	if err != nil {
		return nil, fmt.Errorf("ovh client: %w", err)
	}
	return client, nil
}

// NewSender returns the OVH sender when credentials are configured and a
// logging no-op otherwise.
func NewSender(cfg config.SMSConfig, log *logger.Logger) (Sender, error) {
	if !cfg.IsSMSEnabled() {
		return NewNoopSender(log), nil
	}
	client, err := NewOVHClient(cfg.GetOVHEndpoint(), cfg.GetOVHApplicationKey(), cfg.GetOVHApplicationSecret(), cfg.GetOVHConsumerKey())
	if err != nil {
		return nil, err
	}
	return NewOVHSender(client, cfg.GetOVHSMSServiceName(), cfg.GetOVHSMSSender(), log), nil
}
