package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/voyagen/channeldeck/internal/models"
)

// ErrNotFound is returned when a playlist, channel or account does not exist.
var ErrNotFound = errors.New("not found")

// Store defines persistence for playlists, their channels, and Xtream accounts.
// Stores own id assignment: Create* and AddChannel set IDs and timestamps on the
// value passed in.
type Store interface {
	// CreatePlaylist stores p, assigning ids to it and to any channel without one.
	CreatePlaylist(ctx context.Context, p *models.Playlist) error
	// GetPlaylist returns a playlist with its channels in order.
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	// ListPlaylists returns all playlists (with channels), oldest first.
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	// UpdatePlaylist updates mutable playlist fields.
	UpdatePlaylist(ctx context.Context, id string, fields PlaylistUpdate) error
	// DeletePlaylist deletes a playlist and its channels.
	DeletePlaylist(ctx context.Context, id string) error
	// ReplaceChannels swaps the whole channel list of a playlist.
	ReplaceChannels(ctx context.Context, id string, channels []models.Channel) error

	// AddChannel appends ch to the playlist, assigning its id.
	AddChannel(ctx context.Context, playlistID string, ch *models.Channel) error
	// UpdateChannel updates fields of one channel.
	UpdateChannel(ctx context.Context, playlistID, channelID string, fields ChannelUpdate) error
	// DeleteChannel removes one channel.
	DeleteChannel(ctx context.Context, playlistID, channelID string) error

	// CreateAccount stores a, assigning its id.
	CreateAccount(ctx context.Context, a *models.XtreamAccount) error
	// GetAccount returns one account including its password.
	GetAccount(ctx context.Context, id string) (*models.XtreamAccount, error)
	// ListAccounts returns all accounts, oldest first.
	ListAccounts(ctx context.Context) ([]models.XtreamAccount, error)
	// UpdateAccount updates mutable account fields.
	UpdateAccount(ctx context.Context, id string, fields AccountUpdate) error
	// DeleteAccount deletes an account.
	DeleteAccount(ctx context.Context, id string) error
}

// PlaylistUpdate holds mutable fields for PATCH /playlists/{id}.
// Pointer fields: nil = don't change, non-nil = set.
type PlaylistUpdate struct {
	Name      *string
	SourceURL *string
}

// ChannelUpdate holds mutable channel fields. nil = don't change.
type ChannelUpdate struct {
	Name    *string
	URL     *string
	Logo    *string
	Group   *string
	TvgID   *string
	TvgName *string
}

// AccountUpdate holds mutable account fields. nil = don't change.
type AccountUpdate struct {
	Name      *string
	ServerURL *string
	Username  *string
	Password  *string
}

func newID() string {
	return uuid.NewString()
}

// assignChannelIDs gives every channel without an id a fresh one.
func assignChannelIDs(channels []models.Channel) {
	for i := range channels {
		if channels[i].ID == "" {
			channels[i].ID = newID()
		}
	}
}

// Apply sets the non-nil fields of u on ch.
func (u ChannelUpdate) Apply(ch *models.Channel) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&ch.Name, u.Name)
	set(&ch.URL, u.URL)
	set(&ch.Logo, u.Logo)
	set(&ch.Group, u.Group)
	set(&ch.TvgID, u.TvgID)
	set(&ch.TvgName, u.TvgName)
}

// Apply sets the non-nil fields of u on a.
func (u AccountUpdate) Apply(a *models.XtreamAccount) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.ServerURL != nil {
		a.ServerURL = *u.ServerURL
	}
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.Password != nil {
		a.Password = *u.Password
	}
}
