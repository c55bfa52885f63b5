package invite

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

const sendTimeout = 10 * time.Second

// ResendMailer delivers invitation emails through the Resend API.
type ResendMailer struct {
	client      *resend.Client
	fromEmail   string
	frontendURL string
	log         zerolog.Logger
}

func NewResendMailer(apiKey, fromEmail, frontendURL string, log zerolog.Logger) *ResendMailer {
	if fromEmail == "" {
		fromEmail = "onboarding@resend.dev"
	}
	return &ResendMailer{
		client:      resend.NewClient(apiKey),
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (m *ResendMailer) SendInvitation(ctx context.Context, email, token string, gameName, inviterName *string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	link := fmt.Sprintf("%s/invite/%s", m.frontendURL, token)

	subject := "You're invited to a Whist game"
	if gameName != nil {
		subject = fmt.Sprintf("You're invited to join \"%s\"", *gameName)
	}

	inviter := "A friend"
	if inviterName != nil {
		inviter = *inviterName
	}

	html := fmt.Sprintf(
		`<p>%s invited you to a Whist scoring table.</p>
<p><a href="%s">Accept the invitation</a> to claim your seat. The link expires in 7 days.</p>`,
		inviter, link,
	)

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{email},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("sending invitation email: %w", err)
	}

	m.log.Info().Str("email", email).Msg("invitation email sent")
	return nil
}
