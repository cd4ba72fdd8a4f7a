//go:build integration

package cases

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/application/notify"
	"github.com/baechuer/sports-portal/services/auth-service/internal/bootstrap"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/email"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/redis"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/security"
	http_handlers "github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/handlers"
	itinfra "github.com/baechuer/sports-portal/services/auth-service/test/integration/infra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const itExchange = "it.auth.events"

// Deps is the full stack: postgres partitions behind the redis cache, the
// rabbit publisher, and a welcome-mail consumer writing into a fake sender.
type Deps struct {
	DB     *sql.DB
	Cache  *redis.Client
	Pub    *rabbitmq.Publisher
	Tokens *security.JWTIssuer
	Svc    *auth.Service
	HTTP   *httptest.Server

	Mail     *email.FakeSender
	Consumer *rabbitmq.Consumer
}

func MustNewDeps(t *testing.T) *Deps {
	t.Helper()
	env := itinfra.LoadEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	require.NoError(t, itinfra.WaitPostgres(ctx, env.PostgresDSN), env.String())
	require.NoError(t, itinfra.WaitRedis(ctx, env.RedisAddr), env.String())
	require.NoError(t, itinfra.WaitRabbit(ctx, env.RabbitURL), env.String())

	d := &Deps{}
	t.Cleanup(d.close)

	db, err := sql.Open("pgx", env.PostgresDSN)
	require.NoError(t, err)
	d.DB = db
	require.NoError(t, postgres.Migrate(ctx, db, zerolog.Nop()))

	d.Cache = redis.New(env.RedisAddr, "", 0)
	require.NoError(t, d.Cache.Ping(ctx))
	require.NoError(t, itinfra.ResetAll(ctx, db, env.RedisAddr))

	pgStore := postgres.NewCredentialStore(db, 5*time.Second)
	store := redis.NewCachedCredentialStore(pgStore, d.Cache, time.Minute)

	// consumer first so its queue is bound before anything is published
	d.Mail = email.NewFakeSender(zerolog.Nop())
	d.Consumer = rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		RabbitURL: env.RabbitURL,
		Exchange:  itExchange,
		Queue:     "it.auth-mailer.welcome",
		Prefetch:  5,
		Tag:       "it-mailer",
	}, notify.NewWelcomeMailer(d.Mail, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, d.Consumer.Start(context.Background()))

	d.Pub, err = rabbitmq.NewPublisher(env.RabbitURL, itExchange)
	require.NoError(t, err)

	d.Tokens, err = security.NewJWTIssuer(security.JWTConfig{
		AccessSecret:  "it-access-secret",
		RefreshSecret: "it-refresh-secret",
		Issuer:        "auth-service-it",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	d.Svc = auth.NewService(store, security.NewBcryptHasher(bcrypt.MinCost, 4), d.Tokens, d.Pub, auth.Config{})

	h, err := bootstrap.NewHTTPHandler(d.Svc, bootstrap.HTTPOptions{
		RefreshTTL: 7 * 24 * time.Hour,
		Readiness:  map[string]http_handlers.Pinger{"db": pgStore},
	})
	require.NoError(t, err)
	d.HTTP = httptest.NewServer(h)
	return d
}

func (d *Deps) close() {
	if d.HTTP != nil {
		d.HTTP.Close()
	}
	if d.Consumer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = d.Consumer.Stop(ctx)
		cancel()
	}
	if d.Pub != nil {
		_ = d.Pub.Close()
	}
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
