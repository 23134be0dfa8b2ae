package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/cache"
	"github.com/voyagen/channeldeck/internal/models"
)

// Cache TTLs for different entity types.
const (
	ttlPlaylists = 2 * time.Minute
	ttlPlaylist  = 5 * time.Minute
)

const keyPlaylists = "playlists:all"

func keyPlaylist(id string) string { return "playlist:" + id }

// CachedStore wraps a Store with a Redis caching layer for playlists.
// Reads are served from cache when possible; writes invalidate the affected keys.
// Accounts pass straight through so credentials never land in Redis.
type CachedStore struct {
	inner Store
	cache *cache.Redis
	log   logrus.FieldLogger
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{inner: inner, cache: c, log: log}
}

// --- cached read operations ---

func (c *CachedStore) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if v, err := cache.Get[[]models.Playlist](ctx, c.cache, keyPlaylists); err == nil {
		return v, nil
	}
	playlists, err := c.inner.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, keyPlaylists, playlists, ttlPlaylists); err != nil {
		c.log.WithError(err).WithField("key", keyPlaylists).Warn("cache set failed")
	}
	return playlists, nil
}

func (c *CachedStore) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	key := keyPlaylist(id)
	if v, err := cache.Get[models.Playlist](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	p, err := c.inner.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, p, ttlPlaylist); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
	return p, nil
}

// --- write operations with cache invalidation ---

func (c *CachedStore) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	if err := c.inner.CreatePlaylist(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, keyPlaylists)
	return nil
}

func (c *CachedStore) UpdatePlaylist(ctx context.Context, id string, fields PlaylistUpdate) error {
	return c.afterPlaylistWrite(ctx, id, c.inner.UpdatePlaylist(ctx, id, fields))
}

func (c *CachedStore) DeletePlaylist(ctx context.Context, id string) error {
	return c.afterPlaylistWrite(ctx, id, c.inner.DeletePlaylist(ctx, id))
}

func (c *CachedStore) ReplaceChannels(ctx context.Context, id string, channels []models.Channel) error {
	return c.afterPlaylistWrite(ctx, id, c.inner.ReplaceChannels(ctx, id, channels))
}

func (c *CachedStore) AddChannel(ctx context.Context, playlistID string, ch *models.Channel) error {
	return c.afterPlaylistWrite(ctx, playlistID, c.inner.AddChannel(ctx, playlistID, ch))
}

func (c *CachedStore) UpdateChannel(ctx context.Context, playlistID, channelID string, fields ChannelUpdate) error {
	return c.afterPlaylistWrite(ctx, playlistID, c.inner.UpdateChannel(ctx, playlistID, channelID, fields))
}

func (c *CachedStore) DeleteChannel(ctx context.Context, playlistID, channelID string) error {
	return c.afterPlaylistWrite(ctx, playlistID, c.inner.DeleteChannel(ctx, playlistID, channelID))
}

// afterPlaylistWrite drops the cached copies of a playlist once a write succeeded.
func (c *CachedStore) afterPlaylistWrite(ctx context.Context, id string, err error) error {
	if err != nil {
		return err
	}
	c.invalidate(ctx, keyPlaylist(id), keyPlaylists)
	return nil
}

// --- passthrough (no caching) ---

func (c *CachedStore) CreateAccount(ctx context.Context, a *models.XtreamAccount) error {
	return c.inner.CreateAccount(ctx, a)
}

func (c *CachedStore) GetAccount(ctx context.Context, id string) (*models.XtreamAccount, error) {
	return c.inner.GetAccount(ctx, id)
}

func (c *CachedStore) ListAccounts(ctx context.Context) ([]models.XtreamAccount, error) {
	return c.inner.ListAccounts(ctx)
}

func (c *CachedStore) UpdateAccount(ctx context.Context, id string, fields AccountUpdate) error {
	return c.inner.UpdateAccount(ctx, id, fields)
}

func (c *CachedStore) DeleteAccount(ctx context.Context, id string) error {
	return c.inner.DeleteAccount(ctx, id)
}

// Purge drops every cached playlist entry.
func (c *CachedStore) Purge(ctx context.Context) error {
	if err := cache.DelPattern(ctx, c.cache, keyPlaylist("*")); err != nil {
		return err
	}
	return cache.Del(ctx, c.cache, keyPlaylists)
}

// --- helpers ---

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil && !errors.Is(err, redis.Nil) {
		c.log.WithError(err).WithField("keys", keys).Warn("cache del failed")
	}
}
