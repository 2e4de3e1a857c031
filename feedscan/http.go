package feedscan

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/feedscan/shield"
)

// Handler returns the control API router.
func (s *Searcher) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range shield.DefaultAPIStack(s.logger) {
		r.Use(mw)
	}
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP registers the control API on a chi router.
func (s *Searcher) RegisterHTTP(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/toggle", s.handleToggle)
}

type toggleRequest struct {
	Text string `json:"text"`
}

func (s *Searcher) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	st, err := s.Toggle(r.Context(), req.Text)
	switch {
	case errors.Is(err, ErrEmptyQuery):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNotAttached):
		writeError(w, http.StatusServiceUnavailable, err)
	case err != nil:
		shield.GetLogger(r.Context()).Error("feedscan: toggle failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Searcher) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
