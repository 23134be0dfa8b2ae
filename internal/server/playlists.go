package server

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/voyagen/channeldeck/internal/cache"
	"github.com/voyagen/channeldeck/internal/fetcher"
	"github.com/voyagen/channeldeck/internal/m3u"
	"github.com/voyagen/channeldeck/internal/models"
	"github.com/voyagen/channeldeck/internal/service"
	"github.com/voyagen/channeldeck/internal/store"
)

// --- playlist handlers ---

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.ListPlaylists(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

type createPlaylistRequest struct {
	Name     string           `json:"name"`
	Channels []channelRequest `json:"channels"`
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeStatus(w, r, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}

	p := &models.Playlist{Name: req.Name, Channels: make([]models.Channel, 0, len(req.Channels))}
	for i, c := range req.Channels {
		ch, err := c.channel()
		if err != nil {
			s.writeStatus(w, r, http.StatusBadRequest, fmt.Errorf("channels[%d]: %w", i, err))
			return
		}
		p.Channels = append(p.Channels, ch)
	}
	if err := s.store.CreatePlaylist(r.Context(), p); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type importPlaylistRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// handleImportPlaylist accepts either JSON ({name, url} or {name, filename, content})
// or raw M3U text as the body with ?name= and ?filename= query parameters.
func (s *Server) handleImportPlaylist(w http.ResponseWriter, r *http.Request) {
	var req importPlaylistRequest
	if isJSON(r) {
		if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
			s.badRequest(w, r, err)
			return
		}
	} else {
		content, err := fetcher.ReadPlaylist(r.Body, s.cfg.MaxUploadBytes)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		q := r.URL.Query()
		req = importPlaylistRequest{Name: q.Get("name"), Filename: q.Get("filename"), Content: content}
	}

	var (
		p   *models.Playlist
		err error
	)
	switch {
	case strings.TrimSpace(req.URL) != "":
		if u, perr := url.ParseRequestURI(strings.TrimSpace(req.URL)); perr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			s.writeStatus(w, r, http.StatusBadRequest, fmt.Errorf("url must be a valid http or https URL"))
			return
		}
		p, err = s.importer.ImportURL(r.Context(), req.Name, req.URL)
	case req.Content != "":
		p, err = s.importer.ImportContent(r.Context(), req.Name, req.Filename, req.Content)
	default:
		s.writeStatus(w, r, http.StatusBadRequest, fmt.Errorf("url or playlist content is required"))
		return
	}
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updatePlaylistRequest struct {
	Name      *string `json:"name"`
	SourceURL *string `json:"source_url"`
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updatePlaylistRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			s.writeStatus(w, r, http.StatusBadRequest, fmt.Errorf("name must not be empty"))
			return
		}
		req.Name = &trimmed
	}

	fields := store.PlaylistUpdate{Name: req.Name, SourceURL: req.SourceURL}
	if err := s.store.UpdatePlaylist(r.Context(), id, fields); err != nil {
		s.writeErr(w, r, err)
		return
	}

	// Return the updated playlist.
	p, err := s.store.GetPlaylist(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlaylist(r.Context(), r.PathValue("id")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeNoContent(w)
}

// handleRefreshPlaylist queues a refresh when Redis is configured and answers
// 202 (without queueing again if one is running); otherwise it refreshes inline
// and returns the updated playlist.
func (s *Server) handleRefreshPlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.redis == nil {
		p, err := s.importer.Refresh(r.Context(), id)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	p, err := s.store.GetPlaylist(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if p.SourceURL == "" {
		s.writeErr(w, r, service.ErrNoSource)
		return
	}
	if cache.IsLocked(r.Context(), s.redis, cache.RefreshLockKey(id)) {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"playlist_id": id,
			"queued":      false,
			"running":     true,
		})
		return
	}
	if err := service.EnqueueRefresh(r.Context(), s.redis, id); err != nil {
		s.writeStatus(w, r, http.StatusInternalServerError, fmt.Errorf("enqueue refresh: %w", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"playlist_id": id,
		"queued":      true,
	})
}

func (s *Server) handleExportPlaylist(w http.ResponseWriter, r *http.Request) {
	filename, content, err := s.importer.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// --- channel handlers ---

type channelRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Logo    string `json:"logo"`
	Group   string `json:"group"`
	TvgID   string `json:"tvg_id"`
	TvgName string `json:"tvg_name"`
}

// channel validates the request. Name and URL are required; an empty group
// becomes the default group.
func (c channelRequest) channel() (models.Channel, error) {
	ch := models.Channel{
		Name:    strings.TrimSpace(c.Name),
		URL:     strings.TrimSpace(c.URL),
		Logo:    strings.TrimSpace(c.Logo),
		Group:   strings.TrimSpace(c.Group),
		TvgID:   strings.TrimSpace(c.TvgID),
		TvgName: strings.TrimSpace(c.TvgName),
	}
	if ch.Name == "" || ch.URL == "" {
		return models.Channel{}, fmt.Errorf("name and url are required")
	}
	if ch.Group == "" {
		ch.Group = m3u.DefaultGroup
	}
	if err := checkChannelFields(map[string]*string{
		"name": &ch.Name, "url": &ch.URL, "logo": &ch.Logo,
		"group": &ch.Group, "tvg_id": &ch.TvgID, "tvg_name": &ch.TvgName,
	}); err != nil {
		return models.Channel{}, err
	}
	return ch, nil
}

// attrFields are written inside quoted #EXTINF attributes on export.
var attrFields = map[string]bool{"logo": true, "group": true, "tvg_id": true, "tvg_name": true}

// checkChannelFields rejects values that would not survive an export: line
// breaks in any field and double quotes in attribute fields. nil is skipped.
func checkChannelFields(fields map[string]*string) error {
	for field, v := range fields {
		if v == nil {
			continue
		}
		if strings.ContainsAny(*v, "\r\n") {
			return fmt.Errorf("%s must not contain line breaks", field)
		}
		if attrFields[field] && strings.Contains(*v, `"`) {
			return fmt.Errorf("%s must not contain double quotes", field)
		}
	}
	return nil
}

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	ch, err := req.channel()
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.store.AddChannel(r.Context(), r.PathValue("id"), &ch); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

type updateChannelRequest struct {
	Name    *string `json:"name"`
	URL     *string `json:"url"`
	Logo    *string `json:"logo"`
	Group   *string `json:"group"`
	TvgID   *string `json:"tvg_id"`
	TvgName *string `json:"tvg_name"`
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	playlistID, channelID := r.PathValue("id"), r.PathValue("channelID")
	var req updateChannelRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	fields := store.ChannelUpdate{
		Name:    trimPtr(req.Name),
		URL:     trimPtr(req.URL),
		Logo:    trimPtr(req.Logo),
		Group:   trimPtr(req.Group),
		TvgID:   trimPtr(req.TvgID),
		TvgName: trimPtr(req.TvgName),
	}
	for field, v := range map[string]*string{"name": fields.Name, "url": fields.URL} {
		if v != nil && *v == "" {
			s.badRequest(w, r, fmt.Errorf("%s must not be empty", field))
			return
		}
	}
	if fields.Group != nil && *fields.Group == "" {
		g := m3u.DefaultGroup
		fields.Group = &g
	}
	if err := checkChannelFields(map[string]*string{
		"name": fields.Name, "url": fields.URL, "logo": fields.Logo,
		"group": fields.Group, "tvg_id": fields.TvgID, "tvg_name": fields.TvgName,
	}); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.store.UpdateChannel(r.Context(), playlistID, channelID, fields); err != nil {
		s.writeErr(w, r, err)
		return
	}

	p, err := s.store.GetPlaylist(r.Context(), playlistID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	for _, ch := range p.Channels {
		if ch.ID == channelID {
			writeJSON(w, http.StatusOK, ch)
			return
		}
	}
	s.writeErr(w, r, store.ErrNotFound)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteChannel(r.Context(), r.PathValue("id"), r.PathValue("channelID")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeNoContent(w)
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
