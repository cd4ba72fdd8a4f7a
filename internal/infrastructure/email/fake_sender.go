package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// SentMail is one message captured by FakeSender.
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// FakeSender logs instead of delivering. Used in dev and tests.
type FakeSender struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []SentMail
	// Fail, when set, is returned from every Send.
	Fail error
}

func NewFakeSender(lg zerolog.Logger) *FakeSender {
	return &FakeSender{
		lg: lg.With().Str("component", "fake_sender").Logger(),
	}
}

func (s *FakeSender) Send(ctx context.Context, to, subject, html string) error {
	s.lg.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("FAKE send email")

	if s.Fail != nil {
		return s.Fail
	}

	s.mu.Lock()
	s.sent = append(s.sent, SentMail{To: to, Subject: subject, HTML: html})
	s.mu.Unlock()
	return nil
}

func (s *FakeSender) Sent() []SentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMail, len(s.sent))
	copy(out, s.sent)
	return out
}
