package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channeldeck/internal/models"
)

// newTestPostgres connects to DATABASE_URL and applies the migrations.
// Tests that need it are skipped when the variable is unset.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, WaitForDatabase(ctx, dsn, 5, time.Second))
	require.NoError(t, RunMigrations(dsn, "file://../../migrations"))
	p, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func channelNames(p *models.Playlist) []string {
	names := make([]string, len(p.Channels))
	for i, ch := range p.Channels {
		names[i] = ch.Name
	}
	return names
}

func TestPostgresPlaylistLifecycle(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	p := &models.Playlist{Name: "Mi lista", SourceURL: "http://src/list.m3u", Channels: []models.Channel{
		{Name: "C", URL: "http://c", Group: "General"},
		{Name: "A", URL: "http://a", Group: "News", TvgID: "a.es", TvgName: "A HD", Logo: "http://logo/a"},
		{Name: "B", URL: "http://b", Group: "General"},
	}}
	require.NoError(t, s.CreatePlaylist(ctx, p))
	t.Cleanup(func() { _ = s.DeletePlaylist(context.Background(), p.ID) })
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mi lista", got.Name)
	assert.Equal(t, "http://src/list.m3u", got.SourceURL)
	assert.Equal(t, []string{"C", "A", "B"}, channelNames(got))
	assert.Equal(t, p.Channels[1].ID, got.Channels[1].ID)
	assert.Equal(t, "a.es", got.Channels[1].TvgID)
	assert.Equal(t, "A HD", got.Channels[1].TvgName)
	assert.Equal(t, "http://logo/a", got.Channels[1].Logo)
	assert.Equal(t, "News", got.Channels[1].Group)

	// partial update keeps the untouched column
	require.NoError(t, s.UpdatePlaylist(ctx, p.ID, PlaylistUpdate{Name: strPtr("Renamed")}))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "http://src/list.m3u", got.SourceURL)

	list, err := s.ListPlaylists(ctx)
	require.NoError(t, err)
	var found bool
	for _, pl := range list {
		if pl.ID == p.ID {
			found = true
			assert.Equal(t, []string{"C", "A", "B"}, channelNames(&pl))
		}
	}
	assert.True(t, found)

	require.NoError(t, s.DeletePlaylist(ctx, p.ID))
	_, err = s.GetPlaylist(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePlaylist(ctx, p.ID), ErrNotFound)
	assert.ErrorIs(t, s.UpdatePlaylist(ctx, p.ID, PlaylistUpdate{Name: strPtr("x")}), ErrNotFound)
}

func TestPostgresChannels(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	p := &models.Playlist{Name: "p", Channels: []models.Channel{
		{Name: "A", URL: "http://a", Group: "General"},
		{Name: "B", URL: "http://b", Group: "General"},
	}}
	require.NoError(t, s.CreatePlaylist(ctx, p))
	t.Cleanup(func() { _ = s.DeletePlaylist(context.Background(), p.ID) })

	c := models.Channel{Name: "C", URL: "http://c", Group: "Cine"}
	require.NoError(t, s.AddChannel(ctx, p.ID, &c))
	require.NotEmpty(t, c.ID)

	// a gap left by a delete does not reorder later appends
	require.NoError(t, s.DeleteChannel(ctx, p.ID, p.Channels[0].ID))
	d := models.Channel{Name: "D", URL: "http://d", Group: "General"}
	require.NoError(t, s.AddChannel(ctx, p.ID, &d))

	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, channelNames(got))

	require.NoError(t, s.UpdateChannel(ctx, p.ID, c.ID, ChannelUpdate{Logo: strPtr("http://logo/c")}))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", got.Channels[1].Name)
	assert.Equal(t, "http://c", got.Channels[1].URL)
	assert.Equal(t, "Cine", got.Channels[1].Group)
	assert.Equal(t, "http://logo/c", got.Channels[1].Logo)

	assert.ErrorIs(t, s.UpdateChannel(ctx, p.ID, "missing", ChannelUpdate{Name: strPtr("x")}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteChannel(ctx, p.ID, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.AddChannel(ctx, "missing", &models.Channel{Name: "x", URL: "http://x"}), ErrNotFound)
}

func TestPostgresReplaceChannels(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	p := &models.Playlist{Name: "p", Channels: []models.Channel{{Name: "old", URL: "http://old", Group: "General"}}}
	require.NoError(t, s.CreatePlaylist(ctx, p))
	t.Cleanup(func() { _ = s.DeletePlaylist(context.Background(), p.ID) })

	require.NoError(t, s.ReplaceChannels(ctx, p.ID, []models.Channel{
		{Name: "new1", URL: "http://n1", Group: "General"},
		{Name: "new2", URL: "http://n2", Group: "General"},
	}))
	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new1", "new2"}, channelNames(got))

	// a failing copy rolls back the delete
	err = s.ReplaceChannels(ctx, p.ID, []models.Channel{
		{ID: "dup", Name: "x", URL: "http://x", Group: "General"},
		{ID: "dup", Name: "y", URL: "http://y", Group: "General"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new1", "new2"}, channelNames(got))

	assert.ErrorIs(t, s.ReplaceChannels(ctx, "missing", nil), ErrNotFound)
}

func TestPostgresAccounts(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	a := &models.XtreamAccount{Name: "Casa", ServerURL: "http://x:8080", Username: "bob", Password: "pw"}
	require.NoError(t, s.CreateAccount(ctx, a))
	t.Cleanup(func() { _ = s.DeleteAccount(context.Background(), a.ID) })

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "pw", got.Password)

	require.NoError(t, s.UpdateAccount(ctx, a.ID, AccountUpdate{Password: strPtr("new")}))
	got, err = s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "Casa", got.Name)

	require.NoError(t, s.DeleteAccount(ctx, a.ID))
	_, err = s.GetAccount(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateAccount(ctx, a.ID, AccountUpdate{Name: strPtr("x")}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, a.ID), ErrNotFound)
}
