package audit

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	pkgctx "github.com/baechuer/sports-portal/services/auth-service/internal/pkg/context"
)

var authEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Auth business events by action",
	},
	[]string{"action"},
)

// Logger provides structured audit logging for auth business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record is the hook handed to the auth service. Known actions get a
// dedicated message; anything else is logged generically.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	authEventsTotal.WithLabelValues(action).Inc()

	switch action {
	case "register":
		l.Registered(ctx, fields["user_id"], fields["role"], fields["email"])
	case "login":
		l.LoginSuccess(ctx, fields["user_id"], fields["role"])
	case "login_failed":
		l.LoginFailed(ctx, fields["email"], fields["reason"])
	case "refresh":
		l.TokenRefreshed(ctx, fields["user_id"])
	case "logout":
		l.Logout(ctx, fields["user_id"])
	default:
		ev := l.log.Info().Str("action", action).Str("request_id", pkgctx.GetRequestID(ctx))
		for k, v := range fields {
			if k == "email" {
				v = maskEmail(v)
			}
			ev = ev.Str(k, v)
		}
		ev.Msg("audit event")
	}
}

// Registered logs a new account
func (l *Logger) Registered(ctx context.Context, userID, role, email string) {
	l.log.Info().
		Str("action", "register").
		Str("user_id", userID).
		Str("role", role).
		Str("email", maskEmail(email)).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User registered")
}

// LoginSuccess logs a successful login
func (l *Logger) LoginSuccess(ctx context.Context, userID, role string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("role", role).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt
func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("reason", reason).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

// TokenRefreshed logs a token refresh
func (l *Logger) TokenRefreshed(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "token_refreshed").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("Access token refreshed")
}

// Logout logs a user logout
func (l *Logger) Logout(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "logout").
		Str("user_id", userID).
		Str("request_id", pkgctx.GetRequestID(ctx)).
		Msg("User logged out")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
