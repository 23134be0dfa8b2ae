package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/voyagen/channeldeck/internal/models"
	"github.com/voyagen/channeldeck/internal/service"
	"github.com/voyagen/channeldeck/internal/store"
)

// --- account handlers ---

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []models.XtreamAccount{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

type addAccountRequest struct {
	Name      string `json:"name"`
	ServerURL string `json:"server_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	acc, err := s.accounts.Add(r.Context(), req.Name, req.ServerURL, req.Username, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.store.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

type updateAccountRequest struct {
	Name      *string `json:"name"`
	ServerURL *string `json:"server_url"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	acc, err := s.accounts.Update(r.Context(), r.PathValue("id"), store.AccountUpdate{
		Name:      req.Name,
		ServerURL: req.ServerURL,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeNoContent(w)
}

// --- catalog handlers ---

func (s *Server) handleAccountCategories(w http.ResponseWriter, r *http.Request) {
	ct, err := models.ParseContentType(r.URL.Query().Get("type"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	cats, err := s.accounts.Categories(r.Context(), r.PathValue("id"), ct)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleAccountItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ct, err := models.ParseContentType(q.Get("type"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	items, err := s.accounts.Items(r.Context(), r.PathValue("id"), ct, q.Get("category_id"), q.Get("search"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":  ct,
		"items": items,
		"total": len(items),
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ct, err := models.ParseContentType(q.Get("type"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	itemID, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil {
		s.badRequest(w, r, fmt.Errorf("invalid id: %q", q.Get("id")))
		return
	}
	ch, err := s.accounts.Play(r.Context(), r.PathValue("id"), service.PlayRequest{
		Type:      ct,
		ItemID:    itemID,
		Extension: q.Get("ext"),
		Name:      q.Get("name"),
		Logo:      q.Get("logo"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}
