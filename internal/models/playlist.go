package models

import "time"

// Playlist is a named, ordered list of channels.
// SourceURL is set when the playlist was imported from a remote M3U and enables refresh.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SourceURL string    `json:"source_url,omitempty"`
	Channels  []Channel `json:"channels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of p whose channel slice does not alias p's.
func (p *Playlist) Clone() *Playlist {
	cp := *p
	cp.Channels = make([]Channel, len(p.Channels))
	copy(cp.Channels, p.Channels)
	return &cp
}
