package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// App
	Env      string `env:"ENV" envDefault:"dev"` // dev / staging / prod
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	// SeedDemo creates one student and one trainer at startup (dev only).
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Auth / Security
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"auth-service"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	// 0 means runtime.NumCPU().
	HashWorkers int `env:"HASH_WORKERS" envDefault:"0"`

	// Infrastructure
	DBAddr            string        `env:"DB_ADDR,required,notEmpty"`
	DBQueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	PartitionCacheTTL time.Duration `env:"PARTITION_CACHE_TTL" envDefault:"10m"`
	RabbitURL         string        `env:"RABBIT_URL"`
	RabbitExchange    string        `env:"RABBIT_EXCHANGE" envDefault:"auth.events"`
	PublishTimeout    time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"3s"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// SecureCookies reports whether the refresh cookie must carry Secure.
func (c *Config) SecureCookies() bool { return c.Env == "prod" }

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if !strings.HasPrefix(c.DBAddr, "postgres://") && !strings.HasPrefix(c.DBAddr, "postgresql://") {
		return fmt.Errorf("DB_ADDR must be a postgres:// URL")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// MailerConfig drives cmd/mailer.
type MailerConfig struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	RabbitURL      string `env:"RABBIT_URL,required,notEmpty"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" envDefault:"auth.events"`
	Queue          string `env:"MAILER_QUEUE" envDefault:"auth-mailer.welcome"`
	Prefetch       int    `env:"MAILER_PREFETCH" envDefault:"10"`

	EmailProvider string        `env:"EMAIL_PROVIDER" envDefault:"fake"` // fake | smtp | api
	FromEmail     string        `env:"FROM_EMAIL"`
	FromName      string        `env:"FROM_NAME" envDefault:"Mailer"`
	SendTimeout   time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"15s"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPSecure   bool   `env:"SMTP_SECURE" envDefault:"true"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPInsecure bool   `env:"SMTP_INSECURE" envDefault:"false"`

	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`
}

func LoadMailer() (*MailerConfig, error) {
	_ = godotenv.Load()

	cfg := &MailerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.EmailProvider != "fake" && cfg.FromEmail == "" {
		return nil, fmt.Errorf("FROM_EMAIL is required for provider %q", cfg.EmailProvider)
	}
	return cfg, nil
}
