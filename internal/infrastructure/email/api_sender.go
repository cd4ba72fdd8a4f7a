package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type APIConfig struct {
	URL      string
	APIKey   string
	From     string
	FromName string
	Timeout  time.Duration
}

type apiAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiMessage struct {
	From    apiAddress   `json:"from"`
	To      []apiAddress `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
	HTML    string       `json:"html"`
}

// APISender posts messages to an HTTP mail provider with a bearer key.
type APISender struct {
	lg     zerolog.Logger
	cfg    APIConfig
	client *http.Client
}

func NewAPISender(cfg APIConfig, lg zerolog.Logger) (*APISender, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("MAIL_API_URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("MAIL_API_KEY is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &APISender{
		lg:     lg.With().Str("component", "api_sender").Logger(),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *APISender) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(apiMessage{
		From:    apiAddress{Email: s.cfg.From, Name: s.cfg.FromName},
		To:      []apiAddress{{Email: to}},
		Subject: subject,
		Text:    PlainText(html),
		HTML:    html,
	})
	if err != nil {
		return PermanentError{msg: "marshal mail message: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return PermanentError{msg: "build mail request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return TemporaryError{msg: "mail api request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.lg.Info().Str("to", to).Int("status", resp.StatusCode).Msg("mail api send ok")
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := fmt.Sprintf("mail api status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return TemporaryError{msg: msg}
	}
	return PermanentError{msg: msg}
}
