package gateways

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGrid delivers transactional email
type SendGrid struct {
	APIKey   string
	FromName string
	From     string
	// Host overrides the SendGrid API host; empty uses the public API
	Host string
}

// NewSendGrid returns a mailer sending from the given address
func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{APIKey: apiKey, FromName: "QuickVerdicts", From: from}
}

// Send sends one email with plain and html bodies
func (s *SendGrid) Send(ctx context.Context, toName, toEmail, subject, plain, html string) error {
	message := mail.NewSingleEmail(mail.NewEmail(s.FromName, s.From), subject, mail.NewEmail(toName, toEmail), plain, html)

	client := sendgrid.NewSendClient(s.APIKey)
	if s.Host != "" {
		client.BaseURL = s.Host + "/v3/mail/send"
	}
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		zap.S().Errorw("failed to send email", "error", err, "to", toEmail)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", toEmail, "subject", subject)
	return nil
}
