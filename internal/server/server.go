// Package server exposes playlists and Xtream accounts over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/cache"
	"github.com/voyagen/channeldeck/internal/config"
	"github.com/voyagen/channeldeck/internal/service"
	"github.com/voyagen/channeldeck/internal/store"
)

// Deps are the collaborators a Server needs. Redis is optional; without it
// refreshes run inside the request.
type Deps struct {
	Store    store.Store
	Importer *service.Importer
	Accounts *service.Accounts
	Redis    *cache.Redis
	Log      logrus.FieldLogger
}

// Server holds dependencies for the HTTP API.
type Server struct {
	store    store.Store
	importer *service.Importer
	accounts *service.Accounts
	redis    *cache.Redis // nil when REDIS_URL is not set
	cfg      *config.Config
	log      logrus.FieldLogger
	mux      *http.ServeMux
	handler  http.Handler
}

// New creates a Server and registers routes.
func New(cfg *config.Config, d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	srv := &Server{
		store:    d.Store,
		importer: d.Importer,
		accounts: d.Accounts,
		redis:    d.Redis,
		cfg:      cfg,
		log:      log,
		mux:      http.NewServeMux(),
	}
	srv.routes()
	srv.handler = withCORS(srv.withLogging(srv.withRecover(srv.mux)))
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Playlists
	s.mux.HandleFunc("GET /api/playlists", s.handleListPlaylists)
	s.mux.HandleFunc("POST /api/playlists", s.handleCreatePlaylist)
	s.mux.HandleFunc("POST /api/playlists/import", s.handleImportPlaylist)
	s.mux.HandleFunc("GET /api/playlists/{id}", s.handleGetPlaylist)
	s.mux.HandleFunc("PATCH /api/playlists/{id}", s.handleUpdatePlaylist)
	s.mux.HandleFunc("DELETE /api/playlists/{id}", s.handleDeletePlaylist)
	s.mux.HandleFunc("POST /api/playlists/{id}/refresh", s.handleRefreshPlaylist)
	s.mux.HandleFunc("GET /api/playlists/{id}/export", s.handleExportPlaylist)

	// Channels
	s.mux.HandleFunc("POST /api/playlists/{id}/channels", s.handleAddChannel)
	s.mux.HandleFunc("PATCH /api/playlists/{id}/channels/{channelID}", s.handleUpdateChannel)
	s.mux.HandleFunc("DELETE /api/playlists/{id}/channels/{channelID}", s.handleDeleteChannel)

	// Xtream accounts
	s.mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	s.mux.HandleFunc("POST /api/accounts", s.handleAddAccount)
	s.mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	s.mux.HandleFunc("PATCH /api/accounts/{id}", s.handleUpdateAccount)
	s.mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	s.mux.HandleFunc("GET /api/accounts/{id}/categories", s.handleAccountCategories)
	s.mux.HandleFunc("GET /api/accounts/{id}/items", s.handleAccountItems)
	s.mux.HandleFunc("GET /api/accounts/{id}/play", s.handlePlay)

	// Docs
	s.mux.HandleFunc("GET /api/docs", handleSwaggerUI)
	s.mux.HandleFunc("GET /api/docs/openapi.yaml", handleOpenAPISpec)
}

// ServeHTTP implements http.Handler with CORS, logging and panic recovery applied.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("server shutdown")
		}
	}()

	s.log.WithField("addr", addr).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.redis != nil {
		resp["redis"] = "ok"
		if err := s.redis.Ping(r.Context()); err != nil {
			resp["redis"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
