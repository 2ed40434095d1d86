package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPServer holds the relay connection settings.
type SMTPServer struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPTransport delivers over a direct SMTP connection via go-mail.
type SMTPTransport struct {
	server   SMTPServer
	envelope Envelope
}

func NewSMTPTransport(server SMTPServer, envelope Envelope) *SMTPTransport {
	return &SMTPTransport{server: server, envelope: envelope}
}

func (s *SMTPTransport) message(toEmail, subject, htmlContent string, attachments []Attachment) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.envelope.FromName, s.envelope.FromAddress); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	if s.envelope.ReplyTo != "" {
		if err := msg.ReplyTo(s.envelope.ReplyTo); err != nil {
			return nil, fmt.Errorf("smtp reply-to: %w", err)
		}
	}
	if bcc := s.envelope.archiveFor(toEmail); bcc != "" {
		if err := msg.Bcc(bcc); err != nil {
			return nil, fmt.Errorf("smtp bcc: %w", err)
		}
	}
	msg.SetMessageID()
	msg.SetDate()
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		mimeType := att.MIMEType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		err := msg.AttachReader(att.FileName, bytes.NewReader(att.Content),
			gomail.WithFileContentType(gomail.ContentType(mimeType)))
		if err != nil {
			return nil, fmt.Errorf("smtp attach %s: %w", att.FileName, err)
		}
	}
	return msg, nil
}

func (s *SMTPTransport) options() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.server.Port),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(ctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, "tcp4", addr)
		}),
	}
	// 465 is implicit TLS, every other port negotiates STARTTLS when offered.
	if s.server.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	if s.server.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.server.Username),
			gomail.WithPassword(s.server.Password),
		)
	}
	return opts
}

func (s *SMTPTransport) Send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg, err := s.message(toEmail, subject, htmlContent, attachments)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(s.server.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
