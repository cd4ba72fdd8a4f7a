package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// PartitionKeyPrefix namespaces the email -> role entries.
const PartitionKeyPrefix = "auth:partition:"

type PartitionEntry struct {
	Email string
	Role  string // raw value; may be garbage if someone wrote the key by hand
	TTL   time.Duration
}

// Valid reports whether the entry would be honoured by the cached store.
func (e PartitionEntry) Valid() bool { return domain.IsValidRole(e.Role) }

// ScanPartitions walks every cached partition entry matching pattern (a glob
// applied to the email part). fn returning an error stops the walk.
func (c *Client) ScanPartitions(ctx context.Context, pattern string, count int64, fn func(PartitionEntry) error) (int, error) {
	if pattern == "" {
		pattern = "*"
	}
	if count <= 0 {
		count = 200
	}

	var cursor uint64
	seen := 0
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, PartitionKeyPrefix+pattern, count).Result()
		if err != nil {
			return seen, err
		}
		for _, k := range keys {
			val, err := c.rdb.Get(ctx, k).Result()
			if errors.Is(err, goredis.Nil) {
				continue // expired between SCAN and GET
			}
			if err != nil {
				return seen, err
			}
			ttl, err := c.rdb.TTL(ctx, k).Result()
			if err != nil {
				return seen, err
			}
			seen++
			if err := fn(PartitionEntry{
				Email: strings.TrimPrefix(k, PartitionKeyPrefix),
				Role:  val,
				TTL:   ttl,
			}); err != nil {
				return seen, err
			}
		}
		cursor = next
		if cursor == 0 {
			return seen, nil
		}
	}
}

// PurgePartition drops the cached partition for email. The next lookup
// falls back to the full store scan.
func (c *Client) PurgePartition(ctx context.Context, email string) (bool, error) {
	n, err := c.rdb.Del(ctx, PartitionKeyPrefix+domain.NormalizeEmail(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
