package redis

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, mr.Set(PartitionKeyPrefix+"anna@example.com", "student"))
	require.NoError(t, mr.Set(PartitionKeyPrefix+"coach@example.com", "trainer"))
	require.NoError(t, mr.Set(PartitionKeyPrefix+"weird@example.com", "admin"))
	require.NoError(t, mr.Set("unrelated:key", "x"))
	mr.SetTTL(PartitionKeyPrefix+"coach@example.com", time.Minute)
	return c, mr
}

func TestScanPartitions_ListsOnlyPartitionKeys(t *testing.T) {
	c, _ := seededClient(t)

	var got []PartitionEntry
	n, err := c.ScanPartitions(context.Background(), "", 10, func(e PartitionEntry) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sort.Slice(got, func(i, j int) bool { return got[i].Email < got[j].Email })
	assert.Equal(t, "anna@example.com", got[0].Email)
	assert.True(t, got[0].Valid())
	assert.Equal(t, "trainer", got[1].Role)
	assert.Equal(t, time.Minute, got[1].TTL)
	assert.False(t, got[2].Valid())
}

func TestScanPartitions_Pattern(t *testing.T) {
	c, _ := seededClient(t)

	n, err := c.ScanPartitions(context.Background(), "coach*", 0, func(e PartitionEntry) error {
		assert.Equal(t, "coach@example.com", e.Email)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScanPartitions_CallbackErrorStops(t *testing.T) {
	c, _ := seededClient(t)
	stop := errors.New("stop")

	n, err := c.ScanPartitions(context.Background(), "", 10, func(PartitionEntry) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestPurgePartition(t *testing.T) {
	c, mr := seededClient(t)
	ctx := context.Background()

	ok, err := c.PurgePartition(ctx, "  anna@example.com ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists(PartitionKeyPrefix+"anna@example.com"))

	ok, err = c.PurgePartition(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
