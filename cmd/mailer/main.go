// cmd/mailer/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/notify"
	"github.com/baechuer/sports-portal/services/auth-service/internal/config"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/email"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
)

type worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan struct{}
}

type workerBuilder func(lg zerolog.Logger) (worker, error)

func Run(build workerBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	w, err := build(lg)
	if err != nil {
		lg.Error().Err(err).Msg("mailer bootstrap failed")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		lg.Error().Err(err).Msg("consumer start failed")
		return 1
	}

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case <-w.Done():
		lg.Error().Msg("consumer exited unexpectedly")
		return 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		lg.Error().Err(err).Msg("consumer stop timed out")
		return 1
	}

	lg.Info().Msg("mailer stopped")
	return 0
}

func buildFromConfig(lg zerolog.Logger) (worker, error) {
	cfg, err := config.LoadMailer()
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "auth-mailer"})
	lg = logger.Logger

	sender, err := email.NewSender(email.Config{
		Provider: cfg.EmailProvider,
		SMTP: email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
			Timeout:  cfg.SendTimeout,
			Secure:   cfg.SMTPSecure,
			Insecure: cfg.SMTPInsecure,
		},
		API: email.APIConfig{
			URL:      cfg.MailAPIURL,
			APIKey:   cfg.MailAPIKey,
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
			Timeout:  cfg.SendTimeout,
		},
	}, lg)
	if err != nil {
		return nil, err
	}

	lg.Info().
		Str("provider", cfg.EmailProvider).
		Str("queue", cfg.Queue).
		Str("exchange", cfg.RabbitExchange).
		Msg("mailer configured")

	mailer := notify.NewWelcomeMailer(sender, lg)
	return rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		RabbitURL: cfg.RabbitURL,
		Exchange:  cfg.RabbitExchange,
		Queue:     cfg.Queue,
		Prefetch:  cfg.Prefetch,
		Tag:       "auth-mailer",
	}, mailer, lg), nil
}

func main() {
	logger.Init(logger.Options{Service: "auth-mailer"})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(buildFromConfig, sigCh, zlog.Logger))
}
