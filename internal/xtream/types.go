package xtream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AuthResponse is the body of an unauthenticated-action player_api.php call.
type AuthResponse struct {
	UserInfo   *UserInfo  `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}

// UserInfo contains account details. Auth is 0 when the credentials were rejected;
// some servers omit it for valid accounts.
type UserInfo struct {
	Username          string     `json:"username"`
	Status            string     `json:"status"` // "Active", "Expired", "Banned"
	ExpDate           flexString `json:"exp_date"`
	MaxConnections    flexString `json:"max_connections"`
	ActiveConnections flexString `json:"active_cons"`
	Auth              *flexInt   `json:"auth"`
}

// ServerInfo contains server metadata.
type ServerInfo struct {
	URL            string     `json:"url"`
	Port           flexString `json:"port"`
	HTTPSPort      flexString `json:"https_port"`
	ServerProtocol string     `json:"server_protocol"`
	Timezone       string     `json:"timezone"`
}

type rawCategory struct {
	CategoryID   flexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     flexInt    `json:"parent_id"`
}

// rawItem covers get_live_streams, get_vod_streams and get_series records.
// Which fields are meaningful depends on the action that produced it.
type rawItem struct {
	StreamID           flexInt    `json:"stream_id"`
	SeriesID           flexInt    `json:"series_id"`
	Name               flexString `json:"name"`
	StreamIcon         string     `json:"stream_icon"`
	Cover              string     `json:"cover"`
	CategoryID         flexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	EPGChannelID       flexString `json:"epg_channel_id"`
	Rating             flexString `json:"rating"`
	Plot               string     `json:"plot"`
	Added              flexString `json:"added"`
}

// flexInt accepts 12, "12", "12.0", "" and null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*f = flexInt(fl)
	return nil
}

// flexString accepts a JSON string, number, bool or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}
