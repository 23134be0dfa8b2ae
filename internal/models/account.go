package models

import "time"

// XtreamAccount holds the credentials of one Xtream Codes catalog account.
// Password is never serialized to API clients.
type XtreamAccount struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ServerURL string    `json:"server_url"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
