package m3u

import (
	"strings"

	"github.com/voyagen/channeldeck/internal/models"
)

// pendingEntry is an #EXTINF line that has not yet been paired with its URI.
type pendingEntry struct {
	name  string
	attrs map[string]string
}

// Decode parses M3U text into channels in source order.
//
// Blank lines, the #EXTM3U header, other # comments and URI lines with no preceding
// #EXTINF are skipped. An #EXTINF line followed by another #EXTINF line is dropped,
// as is a trailing one with no URI. Decode never fails; a nil result means no
// channels were found. Returned channels have no ID.
func Decode(content string) []models.Channel {
	var channels []models.Channel
	var pending *pendingEntry

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, extinfTag):
			// Previous EXTINF without URL is discarded.
			rest := line[len(extinfTag):]
			pending = &pendingEntry{
				name:  displayName(rest),
				attrs: parseAttributes(rest),
			}
		case strings.HasPrefix(line, "#"):
			continue
		case pending != nil:
			channels = append(channels, pending.channel(line))
			pending = nil
		}
	}
	return channels
}

func (p *pendingEntry) channel(url string) models.Channel {
	group := p.attrs[attrGroupTitle]
	if group == "" {
		group = DefaultGroup
	}
	return models.Channel{
		Name:    p.name,
		URL:     url,
		Logo:    firstNonEmpty(p.attrs, attrTvgLogo, attrLegacyLogo),
		Group:   group,
		TvgID:   p.attrs[attrTvgID],
		TvgName: p.attrs[attrTvgName],
	}
}
