package memory

import (
	"context"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
)

// NoopPublisher logs events instead of sending them. Used when RABBIT_URL
// is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("role", evt.Role).
		Msg("noop publisher: user registered")
	return nil
}
