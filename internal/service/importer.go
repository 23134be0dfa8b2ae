// Package service holds the use cases behind the HTTP API: importing and
// exporting M3U playlists and browsing Xtream catalogs.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/fetcher"
	"github.com/voyagen/channeldeck/internal/m3u"
	"github.com/voyagen/channeldeck/internal/metrics"
	"github.com/voyagen/channeldeck/internal/models"
	"github.com/voyagen/channeldeck/internal/store"
)

// DefaultPlaylistName names imports that carry neither a name nor a file name.
const DefaultPlaylistName = "Lista importada"

var (
	// ErrNoChannels means the decoded playlist text held no channel.
	ErrNoChannels = errors.New("no channels found")
	// ErrNoSource means a playlist cannot be refreshed because it was not imported from a URL.
	ErrNoSource = errors.New("playlist has no source url")
	// ErrMissingField means a required input was empty.
	ErrMissingField = errors.New("missing required field")
)

// Importer turns M3U text into stored playlists and back.
type Importer struct {
	Store     store.Store
	UserAgent string
	Timeout   time.Duration
	Log       logrus.FieldLogger
}

// ImportURL fetches the playlist at url and stores it. An empty name becomes
// DefaultPlaylistName. The URL is kept so the playlist can be refreshed.
func (im *Importer) ImportURL(ctx context.Context, name, url string) (*models.Playlist, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url", ErrMissingField)
	}
	content, err := fetcher.FetchPlaylist(ctx, url, im.UserAgent, im.Timeout)
	if err != nil {
		metrics.RecordImport("url", "fetch_error")
		return nil, err
	}
	p, err := im.store(ctx, "url", firstNonBlank(name, DefaultPlaylistName), url, content)
	if err != nil {
		return nil, err
	}
	im.logger().WithFields(logrus.Fields{"playlist_id": p.ID, "channels": len(p.Channels)}).Info("playlist imported from url")
	return p, nil
}

// ImportContent stores playlist text uploaded directly. The name falls back to
// the file name without its extension, then to DefaultPlaylistName.
func (im *Importer) ImportContent(ctx context.Context, name, filename, content string) (*models.Playlist, error) {
	name = firstNonBlank(name, fetcher.PlaylistNameFromFile(filename), DefaultPlaylistName)
	p, err := im.store(ctx, "upload", name, "", content)
	if err != nil {
		return nil, err
	}
	im.logger().WithFields(logrus.Fields{"playlist_id": p.ID, "channels": len(p.Channels)}).Info("playlist imported from upload")
	return p, nil
}

func (im *Importer) store(ctx context.Context, source, name, sourceURL, content string) (*models.Playlist, error) {
	channels, err := decode(content)
	if err != nil {
		metrics.RecordImport(source, "empty")
		return nil, err
	}
	p := &models.Playlist{Name: name, SourceURL: sourceURL, Channels: channels}
	if err := im.Store.CreatePlaylist(ctx, p); err != nil {
		metrics.RecordImport(source, "error")
		return nil, fmt.Errorf("CreatePlaylist: %w", err)
	}
	metrics.RecordImport(source, "ok")
	return p, nil
}

// Refresh re-fetches a playlist from its source URL and replaces its channels.
// When the fetch fails or yields no channels the stored channels are kept.
func (im *Importer) Refresh(ctx context.Context, playlistID string) (*models.Playlist, error) {
	p, err := im.Store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if p.SourceURL == "" {
		return nil, ErrNoSource
	}
	content, err := fetcher.FetchPlaylist(ctx, p.SourceURL, im.UserAgent, im.Timeout)
	if err != nil {
		metrics.RecordImport("refresh", "fetch_error")
		return nil, err
	}
	channels, err := decode(content)
	if err != nil {
		metrics.RecordImport("refresh", "empty")
		return nil, err
	}
	if err := im.Store.ReplaceChannels(ctx, playlistID, channels); err != nil {
		metrics.RecordImport("refresh", "error")
		return nil, fmt.Errorf("ReplaceChannels: %w", err)
	}
	metrics.RecordImport("refresh", "ok")
	im.logger().WithFields(logrus.Fields{"playlist_id": playlistID, "channels": len(channels)}).Info("playlist refreshed")
	return im.Store.GetPlaylist(ctx, playlistID)
}

// Export renders a stored playlist as M3U text and suggests a download file name.
func (im *Importer) Export(ctx context.Context, playlistID string) (filename, content string, err error) {
	p, err := im.Store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return "", "", err
	}
	metrics.RecordExport()
	return ExportFilename(p.Name), m3u.Encode(p.Channels), nil
}

// ExportFilename returns "<name>.m3u" with characters that break a
// Content-Disposition header or a path replaced by "_".
func ExportFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '/', '\\', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "playlist"
	}
	return name + ".m3u"
}

func decode(content string) ([]models.Channel, error) {
	channels := m3u.Decode(content)
	metrics.RecordDecoded(len(channels))
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	return channels, nil
}

func (im *Importer) logger() logrus.FieldLogger {
	if im.Log == nil {
		return logrus.StandardLogger()
	}
	return im.Log
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
