package models

// Channel is one playable entry of a playlist (name, url, logo, group, tvg linkage).
// ID is assigned by the store, never by the M3U codec.
type Channel struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Logo    string `json:"logo,omitempty"`
	Group   string `json:"group,omitempty"`
	TvgID   string `json:"tvg_id,omitempty"`
	TvgName string `json:"tvg_name,omitempty"`
}
