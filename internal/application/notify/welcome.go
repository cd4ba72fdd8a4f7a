package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// Sender is the outbound mail capability.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

const welcomeSubject = "Welcome to the sports portal"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>Welcome, {{.FirstName}}!</h2>
    <p>Your {{.Role}} account for {{.Email}} is ready.</p>
    {{- if eq .Role "trainer"}}
    <p>You can now create training sessions and invite students.</p>
    {{- else}}
    <p>You can now sign in and join your team's training sessions.</p>
    {{- end}}
    <p style="color:#555; font-size:12px;">If you did not create this account, ignore this email.</p>
  </body>
</html>`))

// WelcomeMailer sends one greeting per UserRegistered event.
type WelcomeMailer struct {
	lg     zerolog.Logger
	sender Sender
}

func NewWelcomeMailer(sender Sender, lg zerolog.Logger) *WelcomeMailer {
	return &WelcomeMailer{
		lg:     lg.With().Str("component", "welcome_mailer").Logger(),
		sender: sender,
	}
}

func (m *WelcomeMailer) UserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	body, err := renderWelcome(evt)
	if err != nil {
		return err
	}

	if err := m.sender.Send(ctx, evt.Email, welcomeSubject, body); err != nil {
		return fmt.Errorf("send welcome to user %s: %w", evt.UserID, err)
	}

	m.lg.Info().Str("user_id", evt.UserID).Str("role", evt.Role).Msg("welcome email sent")
	return nil
}

func renderWelcome(evt auth.UserRegisteredEvent) (string, error) {
	role := evt.Role
	if !domain.IsValidRole(role) {
		role = string(domain.RoleStudent)
	}
	name := evt.FirstName
	if name == "" {
		name = "there"
	}

	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct {
		FirstName, Role, Email string
	}{name, role, evt.Email})
	if err != nil {
		return "", fmt.Errorf("render welcome: %w", err)
	}
	return buf.String(), nil
}
