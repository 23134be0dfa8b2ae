// Package m3u decodes extended M3U playlists into channels and encodes channels
// back into M3U text.
//
// The grammar is the loose one IPTV tooling produces:
//
//	#EXTM3U
//	#EXTINF:-1 tvg-id="cnn.us" tvg-logo="http://x/cnn.png" group-title="News",CNN
//	http://stream.example.com/cnn.m3u8
//
// Decode is total: malformed lines are skipped, never reported. Both functions are
// pure and safe for concurrent use.
package m3u

const (
	headerTag = "#EXTM3U"
	extinfTag = "#EXTINF:"

	// DefaultName is used when an #EXTINF line carries no display name.
	DefaultName = "Sin nombre"
	// DefaultGroup is used when an entry has no group-title.
	DefaultGroup = "General"
)

// Recognized attribute keys.
const (
	attrTvgID      = "tvg-id"
	attrTvgName    = "tvg-name"
	attrTvgLogo    = "tvg-logo"
	attrLegacyLogo = "logo"
	attrGroupTitle = "group-title"
)
