package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r, mr
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not-a-url://")
	assert.Error(t, err)
}

func TestGetSetDel(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := Get[sample](ctx, r, "missing")
	assert.True(t, errors.Is(err, redis.Nil))

	require.NoError(t, Set(ctx, r, "k", sample{Name: "a", Count: 2}, time.Minute))
	got, err := Get[sample](ctx, r, "k")
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "a", Count: 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, Del(ctx, r, "k"))
	assert.False(t, mr.Exists("k"))
	assert.NoError(t, Del(ctx, r))
}

func TestDelPattern(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"playlist:1", "playlist:2", "playlists:all", "account:1"} {
		require.NoError(t, mr.Set(k, "x"))
	}

	require.NoError(t, DelPattern(ctx, r, "playlist:*"))

	assert.False(t, mr.Exists("playlist:1"))
	assert.False(t, mr.Exists("playlist:2"))
	assert.True(t, mr.Exists("playlists:all"))
	assert.True(t, mr.Exists("account:1"))
}

func TestTryLock(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()
	key := RefreshLockKey("p1")

	unlock, err := TryLock(ctx, r, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, IsLocked(ctx, r, key))

	_, err = TryLock(ctx, r, key, time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	assert.False(t, IsLocked(ctx, r, key))

	unlock2, err := TryLock(ctx, r, key, time.Minute)
	require.NoError(t, err)
	unlock2()
}

func TestQueue(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, Enqueue(ctx, r, RefreshQueue, RefreshJob{PlaylistID: "a"}))
	require.NoError(t, Enqueue(ctx, r, RefreshQueue, RefreshJob{PlaylistID: "b"}))

	n, err := QueueLen(ctx, r, RefreshQueue)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	first, err := Dequeue[RefreshJob](ctx, r, RefreshQueue, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "a", first.PlaylistID)

	second, err := Dequeue[RefreshJob](ctx, r, RefreshQueue, time.Second)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "b", second.PlaylistID)
}
