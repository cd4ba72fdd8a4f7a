package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Sender delivers one HTML email. Implementations return TemporaryError for
// retriable failures and PermanentError for ones that will never succeed.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// TemporaryError marks a retriable failure (network timeout, SMTP 4xx, provider 5xx).
type TemporaryError struct{ msg string }

func (e TemporaryError) Error() string   { return e.msg }
func (e TemporaryError) Temporary() bool { return true }
func (e TemporaryError) Permanent() bool { return false }

// PermanentError marks a non-retriable failure (bad address, auth rejected).
type PermanentError struct{ msg string }

func (e PermanentError) Error() string   { return e.msg }
func (e PermanentError) Permanent() bool { return true }

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// PlainText derives the text/plain alternative from an HTML body.
func PlainText(html string) string {
	s := tagRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

type Config struct {
	Provider string // fake | smtp | api
	SMTP     SMTPConfig
	API      APIConfig
}

// NewSender picks the implementation named by cfg.Provider.
func NewSender(cfg Config, lg zerolog.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "fake":
		return NewFakeSender(lg), nil
	case "smtp":
		if cfg.SMTP.Host == "" || cfg.SMTP.From == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST and FROM_EMAIL")
		}
		return NewSMTPSender(cfg.SMTP, lg), nil
	case "api":
		return NewAPISender(cfg.API, lg)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
