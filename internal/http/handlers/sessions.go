package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imagestudio/internal/session"
)

// SessionsList returns the persisted generation history.
func (a *App) SessionsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"sessions": a.Sessions.Sessions()})
}

// SessionsSave upserts one session pushed by a host that keeps its session
// state client-side.
func (a *App) SessionsSave(w http.ResponseWriter, r *http.Request) {
	var s session.GenerationSession
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if s.ID == "" {
		a.fail(w, http.StatusBadRequest, "session id is required")
		return
	}
	if err := a.Sessions.Put(r.Context(), s); err != nil {
		a.fail(w, http.StatusInternalServerError, "failed to persist session")
		return
	}
	a.json(w, http.StatusOK, s)
}

// SessionsDelete removes one session by id.
func (a *App) SessionsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := a.Sessions.Delete(r.Context(), id)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, "failed to persist session")
		return
	}
	if !deleted {
		a.fail(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
