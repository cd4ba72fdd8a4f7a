//go:build integration

package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// poll runs try every interval until it succeeds or ctx ends.
func poll(ctx context.Context, what string, interval time.Duration, try func() error) error {
	var last error
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait %s: %w (last=%v)", what, ctx.Err(), last)
		case <-t.C:
			if last = try(); last == nil {
				return nil
			}
		}
	}
}

func WaitPostgres(ctx context.Context, dsn string) error {
	return poll(ctx, "postgres", 400*time.Millisecond, func() error {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.PingContext(ctx)
	})
}

func WaitRedis(ctx context.Context, addr string) error {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	return poll(ctx, "redis", 300*time.Millisecond, func() error {
		return rdb.Ping(ctx).Err()
	})
}

func WaitRabbit(ctx context.Context, url string) error {
	return poll(ctx, "rabbit", 400*time.Millisecond, func() error {
		conn, err := amqp.Dial(url)
		if err != nil {
			return err
		}
		return conn.Close()
	})
}
