package notification

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the Resend API.
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

// NewEmailClient returns a disabled client when email is switched off or no
// API key is configured.
func NewEmailClient(cfg EmailConfig) *EmailClient {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &EmailClient{enabled: false, fromAddress: cfg.FromAddress}
	}
	return &EmailClient{
		client:      resend.NewClient(cfg.APIKey),
		enabled:     true,
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// Send delivers one email and returns the provider message id.
func (c *EmailClient) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("email client is disabled")
	}

	params := &resend.SendEmailRequest{
		From:    c.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}
