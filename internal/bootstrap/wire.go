package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/audit"
	"github.com/baechuer/sports-portal/services/auth-service/internal/config"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/memory"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/redis"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/security"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
	http_handlers "github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/handlers"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/middleware"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/response"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(dsn string, lg *zerolog.Logger) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB, lg zerolog.Logger) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(url, exchange string) (Publisher, error)
}

// Publisher is an event publisher that owns a connection.
type Publisher interface {
	auth.EventPublisher
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config + logging
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "auth-service"})
	lg := logger.Logger

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) db + schema
	db, err := deps.NewDB(cfg.DBAddr, &lg)
	if err != nil {
		return fail(fmt.Errorf("connect db: %w", err))
	}
	cleanupFns = append(cleanupFns, func() { _ = db.Close() })

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = deps.Migrate(migrateCtx, db, lg)
	cancel()
	if err != nil {
		return fail(err)
	}

	pgStore := postgres.NewCredentialStore(db, cfg.DBQueryTimeout)
	var store auth.CredentialStore = pgStore
	cached := false

	// 2) redis partition cache (best-effort)
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; partition cache disabled")
			_ = c.Close()
		} else {
			lg.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			store = redis.NewCachedCredentialStore(pgStore, c, cfg.PartitionCacheTTL)
			cached = true
		}
	}

	// 3) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher()
	if cfg.RabbitURL != "" {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.Env == "dev":
			lg.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			return fail(fmt.Errorf("connect rabbitmq: %w", err))
		}
	}

	// 4) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
	tokens, err := security.NewJWTIssuer(security.JWTConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return fail(err)
	}

	// seed (dev only)
	if cfg.SeedDemo && cfg.Env == "dev" {
		postgres.SeedDemoAccounts(context.Background(), store, hasher, lg)
	}

	// 5) service
	authSvc := auth.NewService(store, hasher, tokens, pub, auth.Config{PublishTimeout: cfg.PublishTimeout}).
		WithAudit(audit.New(lg).Record)

	// 6) http
	mux, err := NewHTTPHandler(authSvc, HTTPOptions{
		RefreshTTL:    cfg.RefreshTokenTTL,
		SecureCookies: cfg.SecureCookies(),
		Readiness:     map[string]http_handlers.Pinger{"db": pgStore},
	})
	if err != nil {
		return fail(err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() { runCleanup(cleanupFns) })
	}

	lg.Info().
		Str("env", cfg.Env).
		Bool("partition_cache", cached).
		Bool("events", cfg.RabbitURL != "").
		Msg("auth service wired")

	return srv, cleanup, nil
}

type HTTPOptions struct {
	RefreshTTL    time.Duration
	SecureCookies bool
	Readiness     map[string]http_handlers.Pinger
}

// NewHTTPHandler builds the routed handler tree around an auth service.
func NewHTTPHandler(svc *auth.Service, opts HTTPOptions) (http.Handler, error) {
	return router.New(router.Deps{
		Health: http_handlers.NewHealthHandler(opts.Readiness),
		Auth:   http_handlers.NewAuthHandler(svc, opts.RefreshTTL, opts.SecureCookies),
		AuthMW: middleware.Auth(svc, response.WriteError),
		HSTS:   opts.SecureCookies,
	})
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq.NewPublisher(url, exchange)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
