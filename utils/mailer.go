package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
)

// EmailSender is the part of the SES client the mailer needs.
type EmailSender interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	client EmailSender
	from   string
}

func NewMailer(client EmailSender, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// generic SES sender
func (m *Mailer) sendEmail(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("SES send failed")
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// SendAlertEmail mails a nutrition alert to the user.
func (m *Mailer) SendAlertEmail(ctx context.Context, to, message string) error {
	body := fmt.Sprintf("%s\n\nOpen the app to review today's nutrition dashboard.", message)
	return m.sendEmail(ctx, to, "Nutrition alert", body)
}
