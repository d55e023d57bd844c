package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "AAPL", []byte(`{"price":190}`), time.Minute))
	v, ok, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"price":190}`, string(v))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 30*time.Second))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(29 * time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "entry must expire at its deadline")
	assert.Equal(t, 1, m.Len())

	now = now.Add(24 * time.Hour)
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemory_CopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'
	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	r := NewRedisWithClient(client, "")
	defer r.Close()

	_, ok, err := r.Get(context.Background(), "AAPL")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(context.Background(), "AAPL", []byte("1"), time.Minute))
}
