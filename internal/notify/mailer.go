package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// TimeFormat renders timestamps as DD/MM/YYYY HH:MM:SS.
const TimeFormat = "02/01/2006 15:04:05"

const SyncErrorSubject = "User Roster Sync Error"

// ErrNoAdministrators is returned when there is nobody to notify.
var ErrNoAdministrators = errors.New("no administrators configured")

// EmailClient is the subset of the SES v2 API used to send mail.
type EmailClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var syncErrorText = template.Must(template.New("sync-error-text").Parse(
	`The user roster synchronisation failed.

Error: {{ .Error }}
Time: {{ .Time }}
`))

var syncErrorHTML = htmltemplate.Must(htmltemplate.New("sync-error-html").Parse(
	`<p>The user roster synchronisation failed.</p>
<p><strong>Error:</strong> {{ .Error }}</p>
<p><strong>Time:</strong> {{ .Time }}</p>
`))

type syncErrorContext struct {
	Error string
	Time  string
}

// AdminMailer sends notifications to the configured administrators.
type AdminMailer struct {
	Client         EmailClient
	Sender         string
	Administrators []string
	Log            *zerolog.Logger
}

// NotifySyncError sends one email to every administrator with the error text and the time it occurred.
func (m *AdminMailer) NotifySyncError(ctx context.Context, syncErr error, at time.Time) error {
	if len(m.Administrators) == 0 {
		m.Log.Warn().Err(syncErr).Msg("No administrators configured, sync error notification not sent")
		return ErrNoAdministrators
	}

	data := syncErrorContext{
		Error: syncErr.Error(),
		Time:  at.Format(TimeFormat),
	}

	var text bytes.Buffer
	if err := syncErrorText.Execute(&text, data); err != nil {
		return fmt.Errorf("error rendering text email: %w", err)
	}

	var html bytes.Buffer
	if err := syncErrorHTML.Execute(&html, data); err != nil {
		return fmt.Errorf("error rendering html email: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Sender),
		Destination: &types.Destination{
			ToAddresses: m.Administrators,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(SyncErrorSubject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(text.String())},
					Html: &types.Content{Data: aws.String(html.String())},
				},
			},
		},
	}

	if _, err := m.Client.SendEmail(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			m.Log.Error().Err(err).Str("error_code", apiErr.ErrorCode()).Msg("SES rejected sync error notification")
		} else {
			m.Log.Error().Err(err).Msg("Failed to send sync error notification")
		}
		return fmt.Errorf("error sending email: %w", err)
	}

	m.Log.Info().Strs("recipients", m.Administrators).Msg("Sync error notification sent to administrators")
	return nil
}
