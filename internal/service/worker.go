package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/cache"
)

const (
	dequeueTimeout = 5 * time.Second
	retryDelay     = 2 * time.Second
	refreshLockTTL = 5 * time.Minute
)

// EnqueueRefresh schedules a background refresh of a playlist.
func EnqueueRefresh(ctx context.Context, rds *cache.Redis, playlistID string) error {
	return cache.Enqueue(ctx, rds, cache.RefreshQueue, cache.RefreshJob{
		PlaylistID:  playlistID,
		RequestedAt: time.Now().UTC(),
	})
}

// RunRefreshWorker dequeues refresh jobs until ctx is cancelled. A per-playlist
// lock keeps two workers from refreshing the same playlist at once.
func RunRefreshWorker(ctx context.Context, rds *cache.Redis, im *Importer, log logrus.FieldLogger) {
	log.Info("refresh worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("refresh worker stopping")
			return
		default:
		}

		job, err := cache.Dequeue[cache.RefreshJob](ctx, rds, cache.RefreshQueue, dequeueTimeout)
		if err != nil {
			log.WithError(err).Warn("refresh worker: dequeue failed")
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}
		if job == nil {
			continue // timeout, loop back to check ctx
		}
		processRefresh(ctx, rds, im, log, job)
	}
}

func processRefresh(ctx context.Context, rds *cache.Redis, im *Importer, log logrus.FieldLogger, job *cache.RefreshJob) {
	entry := log.WithField("playlist_id", job.PlaylistID)

	unlock, err := cache.TryLock(ctx, rds, cache.RefreshLockKey(job.PlaylistID), refreshLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			entry.Info("refresh already running, skipping job")
			return
		}
		entry.WithError(err).Warn("refresh lock failed")
		return
	}
	defer unlock()

	if _, err := im.Refresh(ctx, job.PlaylistID); err != nil {
		entry.WithError(err).Warn("refresh failed")
	}
}
