package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/voyagen/channeldeck/internal/fetcher"
	"github.com/voyagen/channeldeck/internal/service"
	"github.com/voyagen/channeldeck/internal/store"
	"github.com/voyagen/channeldeck/internal/xtream"
)

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMissingField), errors.Is(err, xtream.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoChannels):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoSource):
		return http.StatusConflict
	case errors.Is(err, fetcher.ErrTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, xtream.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, fetcher.ErrFetch), errors.Is(err, xtream.ErrConnection), errors.Is(err, xtream.ErrDecode):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writeJSON")
	}
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeErr writes err with the status statusFor picks.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	s.writeStatus(w, r, statusFor(err), err)
}

// writeStatus writes err with an explicit status. 5xx responses are logged.
func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		s.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
		}).Error("request failed")
	}
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: err.Error(),
	})
}

// badRequest writes err as 400 unless it maps to a more specific status.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	s.writeStatus(w, r, status, err)
}
