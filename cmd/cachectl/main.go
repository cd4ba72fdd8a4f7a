// cmd/cachectl inspects the email -> role partition cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/redis"
)

type options struct {
	addr    string
	pass    string
	db      int
	pattern string
	purge   string
	count   int64
	timeout time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("cachectl", flag.ContinueOnError)
	fs.StringVar(&o.addr, "addr", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address host:port")
	fs.StringVar(&o.pass, "pass", os.Getenv("REDIS_PASSWORD"), "redis password")
	fs.IntVar(&o.db, "db", 0, "redis db")
	fs.StringVar(&o.pattern, "pattern", "*", "glob applied to the email part of the key")
	fs.StringVar(&o.purge, "purge", "", "drop the cached partition for this email and exit")
	fs.Int64Var(&o.count, "count", 200, "SCAN COUNT hint")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "overall timeout")
	return o, fs.Parse(args)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, c *redis.Client, o options, out io.Writer) error {
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	if o.purge != "" {
		ok, err := c.PurgePartition(ctx, o.purge)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "purged %s\n", o.purge)
		} else {
			fmt.Fprintf(out, "no entry for %s\n", o.purge)
		}
		return nil
	}

	n, err := c.ScanPartitions(ctx, o.pattern, o.count, func(e redis.PartitionEntry) error {
		note := ""
		if !e.Valid() {
			note = " (ignored: not a role)"
		}
		_, err := fmt.Fprintf(out, "%s\trole=%s\tttl=%s%s\n", e.Email, e.Role, e.TTL, note)
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(out, "no keys matched")
	}
	return nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	c := redis.New(o.addr, o.pass, o.db)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if err := run(ctx, c, o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
