package models

import (
	"fmt"
	"strings"
)

// ContentType is the kind of catalog content an Xtream server exposes.
type ContentType string

const (
	ContentLive   ContentType = "live"
	ContentVOD    ContentType = "vod"
	ContentSeries ContentType = "series"
)

// DefaultExtension is the container used for stream URLs when the catalog names none.
const DefaultExtension = "ts"

// ParseContentType accepts "live", "vod" or "series" (case-insensitive).
// An empty string means live.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ContentLive:
		return ContentLive, nil
	case ContentVOD:
		return ContentVOD, nil
	case ContentSeries:
		return ContentSeries, nil
	}
	return "", fmt.Errorf("unknown content type %q (use live, vod or series)", s)
}

// CatalogCategory is a category of live streams, movies or series.
type CatalogCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// CatalogItem is one live stream, movie or series. Type is resolved once when the
// record is fetched so callers never check for type-specific fields.
type CatalogItem struct {
	Type         ContentType `json:"type"`
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Icon         string      `json:"icon,omitempty"`
	CategoryID   string      `json:"category_id,omitempty"`
	Extension    string      `json:"extension"`
	EPGChannelID string      `json:"epg_channel_id,omitempty"`
	Rating       string      `json:"rating,omitempty"`
	Plot         string      `json:"plot,omitempty"`
	Added        string      `json:"added,omitempty"`
}
