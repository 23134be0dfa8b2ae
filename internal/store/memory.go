package store

import (
	"context"
	"sync"
	"time"

	"github.com/voyagen/channeldeck/internal/models"
)

// Memory implements Store in process memory. Values are copied in and out so
// callers never share state with the store.
type Memory struct {
	mu            sync.RWMutex
	playlists     map[string]*models.Playlist
	playlistOrder []string
	accounts      map[string]*models.XtreamAccount
	accountOrder  []string
	now           func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		playlists: make(map[string]*models.Playlist),
		accounts:  make(map[string]*models.XtreamAccount),
		now:       time.Now,
	}
}

func (m *Memory) CreatePlaylist(_ context.Context, p *models.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Channels == nil {
		p.Channels = []models.Channel{}
	}
	assignChannelIDs(p.Channels)

	m.playlists[p.ID] = p.Clone()
	m.playlistOrder = append(m.playlistOrder, p.ID)
	return nil
}

func (m *Memory) GetPlaylist(_ context.Context, id string) (*models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.playlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *Memory) ListPlaylists(_ context.Context) ([]models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Playlist, 0, len(m.playlistOrder))
	for _, id := range m.playlistOrder {
		out = append(out, *m.playlists[id].Clone())
	}
	return out, nil
}

func (m *Memory) UpdatePlaylist(_ context.Context, id string, fields PlaylistUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[id]
	if !ok {
		return ErrNotFound
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.SourceURL != nil {
		p.SourceURL = *fields.SourceURL
	}
	p.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) DeletePlaylist(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(m.playlists, id)
	m.playlistOrder = removeID(m.playlistOrder, id)
	return nil
}

func (m *Memory) ReplaceChannels(_ context.Context, id string, channels []models.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[id]
	if !ok {
		return ErrNotFound
	}
	assignChannelIDs(channels)
	p.Channels = append([]models.Channel{}, channels...)
	p.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) AddChannel(_ context.Context, playlistID string, ch *models.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	ch.ID = newID()
	p.Channels = append(p.Channels, *ch)
	p.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) UpdateChannel(_ context.Context, playlistID, channelID string, fields ChannelUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	for i := range p.Channels {
		if p.Channels[i].ID == channelID {
			fields.Apply(&p.Channels[i])
			p.UpdatedAt = m.now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteChannel(_ context.Context, playlistID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	for i := range p.Channels {
		if p.Channels[i].ID == channelID {
			p.Channels = append(p.Channels[:i:i], p.Channels[i+1:]...)
			p.UpdatedAt = m.now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) CreateAccount(_ context.Context, a *models.XtreamAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	m.accounts[a.ID] = &cp
	m.accountOrder = append(m.accountOrder, a.ID)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (*models.XtreamAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]models.XtreamAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.XtreamAccount, 0, len(m.accountOrder))
	for _, id := range m.accountOrder {
		out = append(out, *m.accounts[id])
	}
	return out, nil
}

func (m *Memory) UpdateAccount(_ context.Context, id string, fields AccountUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	fields.Apply(a)
	a.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	m.accountOrder = removeID(m.accountOrder, id)
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
