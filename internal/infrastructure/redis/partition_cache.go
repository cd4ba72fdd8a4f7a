package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
)

// PartitionStore is a credential store that can also search a single
// partition.
type PartitionStore interface {
	auth.CredentialStore
	FindInPartition(ctx context.Context, role domain.Role, email string) (domain.User, error)
}

// CachedCredentialStore decorates a PartitionStore with a Redis cache of
// email -> role.
// - FindByEmail: cached partition first, full lookup on miss or stale entry
// - EmailExists: a cache hit answers true; a miss always asks the store
// - Insert*: store first, then cache (best effort)
// Redis failures are logged and ignored.
type CachedCredentialStore struct {
	inner   PartitionStore
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedCredentialStore(inner PartitionStore, client *Client, ttl time.Duration) *CachedCredentialStore {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedCredentialStore{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: PartitionKeyPrefix,
	}
}

func (c *CachedCredentialStore) key(email string) string {
	return c.keyPref + email
}

func (c *CachedCredentialStore) cachedRole(ctx context.Context, email string) (domain.Role, bool) {
	if c.rdb == nil {
		return "", false
	}
	s, err := c.rdb.Get(ctx, c.key(email)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.WithCtx(ctx).Warn().Err(err).Msg("partition cache get failed")
		}
		return "", false
	}
	if !domain.IsValidRole(s) {
		return "", false
	}
	return domain.Role(s), true
}

func (c *CachedCredentialStore) remember(ctx context.Context, email string, role domain.Role) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(email), string(role), c.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("partition cache set failed")
	}
}

func (c *CachedCredentialStore) forget(ctx context.Context, email string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(email)).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("partition cache del failed")
	}
}

func (c *CachedCredentialStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)

	if role, ok := c.cachedRole(ctx, email); ok {
		u, err := c.inner.FindInPartition(ctx, role, email)
		if err == nil {
			return u, nil
		}
		if !domain.Is(err, "user_not_found") {
			return domain.User{}, err
		}
		// stale entry
		c.forget(ctx, email)
	}

	u, err := c.inner.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	c.remember(ctx, email, u.Role)
	return u, nil
}

func (c *CachedCredentialStore) EmailExists(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if _, ok := c.cachedRole(ctx, email); ok {
		return true, nil
	}
	return c.inner.EmailExists(ctx, email)
}

func (c *CachedCredentialStore) InsertStudent(ctx context.Context, s domain.NewStudent) (string, error) {
	id, err := c.inner.InsertStudent(ctx, s)
	if err != nil {
		return "", err
	}
	c.remember(ctx, domain.NormalizeEmail(s.Email), domain.RoleStudent)
	return id, nil
}

func (c *CachedCredentialStore) InsertTrainer(ctx context.Context, t domain.NewTrainer) (string, error) {
	id, err := c.inner.InsertTrainer(ctx, t)
	if err != nil {
		return "", err
	}
	c.remember(ctx, domain.NormalizeEmail(t.Email), domain.RoleTrainer)
	return id, nil
}
