package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channeldeck/internal/models"
)

func strPtr(s string) *string { return &s }

func TestMemoryPlaylistLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	p := &models.Playlist{Name: "Mi lista", Channels: []models.Channel{
		{Name: "A", URL: "http://a", Group: "General"},
		{Name: "B", URL: "http://b", Group: "News"},
	}}
	require.NoError(t, s.CreatePlaylist(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	for _, ch := range p.Channels {
		assert.NotEmpty(t, ch.ID)
	}
	assert.NotEqual(t, p.Channels[0].ID, p.Channels[1].ID)

	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// returned values are copies
	got.Channels[0].Name = "mutated"
	again, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Channels[0].Name)

	require.NoError(t, s.UpdatePlaylist(ctx, p.ID, PlaylistUpdate{Name: strPtr("Renamed")}))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))

	list, err := s.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeletePlaylist(ctx, p.ID))
	_, err = s.GetPlaylist(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePlaylist(ctx, p.ID), ErrNotFound)
}

func TestMemoryListOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, s.CreatePlaylist(ctx, &models.Playlist{Name: name}))
	}

	list, err := s.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Name)
	assert.Equal(t, "three", list[2].Name)
	assert.NotNil(t, list[0].Channels)
}

func TestMemoryChannels(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p := &models.Playlist{Name: "p"}
	require.NoError(t, s.CreatePlaylist(ctx, p))

	ch := &models.Channel{Name: "A", URL: "http://a"}
	require.NoError(t, s.AddChannel(ctx, p.ID, ch))
	require.NotEmpty(t, ch.ID)
	require.NoError(t, s.AddChannel(ctx, p.ID, &models.Channel{Name: "B", URL: "http://b"}))

	require.NoError(t, s.UpdateChannel(ctx, p.ID, ch.ID, ChannelUpdate{Logo: strPtr("http://logo")}))
	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Channels, 2)
	assert.Equal(t, "http://logo", got.Channels[0].Logo)
	assert.Equal(t, "A", got.Channels[0].Name)

	assert.ErrorIs(t, s.UpdateChannel(ctx, p.ID, "nope", ChannelUpdate{}), ErrNotFound)
	assert.ErrorIs(t, s.AddChannel(ctx, "nope", &models.Channel{}), ErrNotFound)

	require.NoError(t, s.DeleteChannel(ctx, p.ID, ch.ID))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Channels, 1)
	assert.Equal(t, "B", got.Channels[0].Name)
	assert.ErrorIs(t, s.DeleteChannel(ctx, p.ID, ch.ID), ErrNotFound)

	require.NoError(t, s.ReplaceChannels(ctx, p.ID, []models.Channel{{Name: "X", URL: "http://x"}}))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Channels, 1)
	assert.Equal(t, "X", got.Channels[0].Name)
	assert.NotEmpty(t, got.Channels[0].ID)
	assert.ErrorIs(t, s.ReplaceChannels(ctx, "nope", nil), ErrNotFound)
}

func TestMemoryAccounts(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	a := &models.XtreamAccount{Name: "Home", ServerURL: "http://tv", Username: "u", Password: "p"}
	require.NoError(t, s.CreateAccount(ctx, a))
	require.NotEmpty(t, a.ID)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Password)

	require.NoError(t, s.UpdateAccount(ctx, a.ID, AccountUpdate{Password: strPtr("new")}))
	got, err = s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
	assert.Equal(t, "u", got.Username)

	list, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteAccount(ctx, a.ID))
	_, err = s.GetAccount(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateAccount(ctx, a.ID, AccountUpdate{}), ErrNotFound)
}
