package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Text:    email.TextBody,
		Html:    email.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("mailer: resend: %w", err)
	}
	return nil
}
