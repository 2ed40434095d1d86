// Package telephony launches outbound calls on the staff softphone through
// the OVH click2call API.
package telephony

import (
	"context"
	"fmt"

	"github.com/ovh/go-ovh/ovh"

	"papex_backend/internal/sms"
	"papex_backend/platform/config"
	"papex_backend/platform/logger"
)

type Caller interface {
	Click2Call(ctx context.Context, number string) error
}

// OVHCaller rings the configured SIP line, which then dials number.
type OVHCaller struct {
	client  *ovh.Client
	billing string
	line    string
	log     *logger.Logger
}

func NewOVHCaller(client *ovh.Client, billing, line string, log *logger.Logger) *OVHCaller {
	return &OVHCaller{client: client, billing: billing, line: line, log: log}
}

type click2CallRequest struct {
	CalledNumber string `json:"calledNumber"`
}

func (c *OVHCaller) Click2Call(ctx context.Context, number string) error {
	path := fmt.Sprintf("/telephony/%s/line/%s/click2Call", c.billing, c.line)
	if err := c.client.PostWithContext(ctx, path, click2CallRequest{CalledNumber: number}, nil); err != nil {
		return fmt.Errorf("ovh click2call: %w", err)
	}
	c.log.Info("click2call launched", "line", c.line)
	return nil
}

type NoopCaller struct {
	log *logger.Logger
}

func (n NoopCaller) Click2Call(_ context.Context, _ string) error {
	if n.log != nil {
		n.log.Info("telephony disabled, call not launched")
	}
	return nil
}

// NewCaller returns the OVH caller when the line is configured.
func NewCaller(cfg config.TelephonyConfig, log *logger.Logger) (Caller, error) {
	if !cfg.IsTelephonyEnabled() {
		return NoopCaller{log: log}, nil
	}
	client, err := sms.NewOVHClient(cfg.GetOVHEndpoint(), cfg.GetOVHApplicationKey(), cfg.GetOVHApplicationSecret(), cfg.GetOVHConsumerKey())
	if err != nil {
		return nil, err
	}
	return NewOVHCaller(client, cfg.GetOVHBillingAccount(), cfg.GetOVHLineNumber(), log), nil
}
