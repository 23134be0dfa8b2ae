package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channeldeck/internal/m3u"
	"github.com/voyagen/channeldeck/internal/models"
	"github.com/voyagen/channeldeck/internal/store"
	"github.com/voyagen/channeldeck/internal/xtream"
)

// catalogServer accepts bob/pw and answers a small fixed catalog.
func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("username") != "bob" || q.Get("password") != "pw" {
			_, _ = w.Write([]byte(`{"user_info":{"auth":0}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("action") {
		case "":
			_, _ = w.Write([]byte(`{"user_info":{"auth":1,"status":"Active"},"server_info":{"url":"tv"}}`))
		case "get_live_categories":
			_, _ = w.Write([]byte(`[{"category_id":"1","category_name":"Noticias","parent_id":0}]`))
		case "get_live_streams":
			_, _ = w.Write([]byte(`[
				{"stream_id":10,"name":"Noticias 24h","stream_icon":"http://i/10.png","category_id":"1"},
				{"stream_id":"11","name":"Deportes","category_id":"1"}
			]`))
		default:
			http.Error(w, "unknown", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAccounts() *Accounts {
	return &Accounts{
		Store: store.NewMemory(),
		NewClient: func(creds xtream.Credentials) (*xtream.Client, error) {
			return xtream.New(creds)
		},
	}
}

func TestAccountsAdd(t *testing.T) {
	srv := catalogServer(t)
	svc := newAccounts()
	ctx := context.Background()

	acc, err := svc.Add(ctx, "Casa", srv.URL+"/", "bob", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, srv.URL, acc.ServerURL)

	_, err = svc.Add(ctx, "Casa", srv.URL, "bob", "wrong")
	assert.ErrorIs(t, err, xtream.ErrInvalidCredentials)

	_, err = svc.Add(ctx, "", srv.URL, "bob", "pw")
	assert.ErrorIs(t, err, ErrMissingField)

	list, err := svc.Store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected accounts are not stored")
}

func TestAccountsUpdate(t *testing.T) {
	srv := catalogServer(t)
	svc := newAccounts()
	ctx := context.Background()
	acc, err := svc.Add(ctx, "Casa", srv.URL, "bob", "pw")
	require.NoError(t, err)

	name := "Oficina"
	got, err := svc.Update(ctx, acc.ID, store.AccountUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Oficina", got.Name)

	bad := "nope"
	_, err = svc.Update(ctx, acc.ID, store.AccountUpdate{Password: &bad})
	assert.ErrorIs(t, err, xtream.ErrInvalidCredentials)
	stored, err := svc.Store.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "pw", stored.Password)

	_, err = svc.Update(ctx, "missing", store.AccountUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsBrowse(t *testing.T) {
	srv := catalogServer(t)
	svc := newAccounts()
	ctx := context.Background()
	acc, err := svc.Add(ctx, "Casa", srv.URL, "bob", "pw")
	require.NoError(t, err)

	cats, err := svc.Categories(ctx, acc.ID, models.ContentLive)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Noticias", cats[0].Name)

	items, err := svc.Items(ctx, acc.ID, models.ContentLive, "1", "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.Items(ctx, acc.ID, models.ContentLive, "", "NOTICIAS")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 10, items[0].ID)

	_, err = svc.Items(ctx, "missing", models.ContentLive, "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsPlay(t *testing.T) {
	srv := catalogServer(t)
	svc := newAccounts()
	ctx := context.Background()
	acc, err := svc.Add(ctx, "Casa", srv.URL, "bob", "pw")
	require.NoError(t, err)

	ch, err := svc.Play(ctx, acc.ID, PlayRequest{Type: models.ContentVOD, ItemID: 42, Extension: "mkv", Name: "Pelicula", Logo: "http://i/42.png"})
	require.NoError(t, err)
	assert.Equal(t, "42", ch.ID)
	assert.Equal(t, "Pelicula", ch.Name)
	assert.Equal(t, srv.URL+"/movie/bob/pw/42.mkv", ch.URL)
	assert.Equal(t, "http://i/42.png", ch.Logo)

	ch, err = svc.Play(ctx, acc.ID, PlayRequest{Type: models.ContentLive, ItemID: 10})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/live/bob/pw/10.ts", ch.URL)
	assert.Equal(t, m3u.DefaultName, ch.Name)

	ch, err = svc.Play(ctx, acc.ID, PlayRequest{Type: models.ContentLive, ItemID: 11, Name: "   "})
	require.NoError(t, err)
	assert.Equal(t, m3u.DefaultName, ch.Name)

	_, err = svc.Play(ctx, acc.ID, PlayRequest{Type: "radio", ItemID: 1})
	assert.ErrorIs(t, err, ErrMissingField)
}
