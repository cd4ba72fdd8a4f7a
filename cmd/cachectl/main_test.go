package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/redis"
)

func TestRun_ListsEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(redis.PartitionKeyPrefix+"anna@example.com", "student"))
	require.NoError(t, mr.Set(redis.PartitionKeyPrefix+"odd@example.com", "admin"))

	c := redis.New(mr.Addr(), "", 0)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, options{pattern: "*", count: 10}, &out))
	assert.Contains(t, out.String(), "anna@example.com\trole=student")
	assert.Contains(t, out.String(), "odd@example.com\trole=admin")
	assert.Contains(t, out.String(), "(ignored: not a role)")
}

func TestRun_Purge(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(redis.PartitionKeyPrefix+"anna@example.com", "student"))

	c := redis.New(mr.Addr(), "", 0)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, options{purge: "anna@example.com"}, &out))
	assert.Equal(t, "purged anna@example.com\n", out.String())
	assert.False(t, mr.Exists(redis.PartitionKeyPrefix+"anna@example.com"))
}

func TestRun_NoMatches(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.New(mr.Addr(), "", 0)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, options{pattern: "*"}, &out))
	assert.Equal(t, "no keys matched\n", out.String())
}

func TestRun_Unreachable(t *testing.T) {
	c := redis.New("127.0.0.1:1", "", 0)
	defer c.Close()

	err := run(context.Background(), c, options{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	o, err := parseFlags([]string{"-purge", "x@example.com", "-db", "2"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", o.addr)
	assert.Equal(t, 2, o.db)
	assert.Equal(t, "x@example.com", o.purge)
}
