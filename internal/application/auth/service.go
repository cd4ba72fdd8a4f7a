package auth

import (
	"context"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
)

type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens TokenIssuer
	pub    EventPublisher

	publishTimeout time.Duration
	now            func() time.Time
	audit          func(ctx context.Context, action string, fields map[string]string)
}

type Config struct {
	// PublishTimeout bounds the best-effort UserRegistered publish.
	PublishTimeout time.Duration
}

func NewService(
	store CredentialStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	pub EventPublisher,
	cfg Config,
) *Service {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		store:          store,
		hasher:         hasher,
		tokens:         tokens,
		pub:            pub,
		publishTimeout: timeout,
		now:            time.Now,
		audit:          func(context.Context, string, map[string]string) {},
	}
}

// TokenPair is the output of register and login. The handler returns the
// access token in the body and puts the refresh token in a cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Claims       domain.Claims
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// issueTokens signs a fresh access + refresh pair for the same claims.
func (s *Service) issueTokens(c domain.Claims) (TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(c)
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrTokenSignFailed)
	}
	refresh, err := s.tokens.IssueRefreshToken(c)
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrTokenSignFailed)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, Claims: c}, nil
}

// publishRegistered is best-effort: failures are logged, never returned.
func (s *Service) publishRegistered(ctx context.Context, c domain.Claims) {
	if s.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	evt := UserRegisteredEvent{
		UserID:     c.UserID,
		Role:       string(c.Role),
		Email:      c.Email,
		FirstName:  c.FirstName,
		OccurredAt: s.now().UTC(),
	}
	if err := s.pub.PublishUserRegistered(ctx, evt); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).
			Str("user_id", c.UserID).
			Msg("publish user registered failed")
	}
}

// asDomain passes domain errors through and wraps anything else with wrap.
func asDomain(err error, wrap func(error) *domain.Error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return wrap(err)
}
