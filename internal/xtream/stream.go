package xtream

import (
	"fmt"
	"net/url"

	"github.com/voyagen/channeldeck/internal/models"
)

var streamPaths = map[models.ContentType]string{
	models.ContentLive:   "live",
	models.ContentVOD:    "movie",
	models.ContentSeries: "series",
}

// BuildStreamURL returns {base}/{live|movie|series}/{user}/{pass}/{id}.{ext}.
// ext defaults to "ts". Unknown content types yield "".
// The URL embeds the credentials and must not be logged.
func (c *Client) BuildStreamURL(ct models.ContentType, id int64, ext string) string {
	segment, ok := streamPaths[ct]
	if !ok {
		return ""
	}
	if ext == "" {
		ext = models.DefaultExtension
	}
	return fmt.Sprintf("%s/%s/%s/%s/%d.%s",
		c.base, segment, url.PathEscape(c.username), url.PathEscape(c.password), id, ext)
}

// StreamURL returns the playback URL for a catalog item.
func (c *Client) StreamURL(item models.CatalogItem) string {
	return c.BuildStreamURL(item.Type, item.ID, item.Extension)
}
