// internal/server/handlers/user.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"convosense/internal/domain/analysis"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	store analysis.UserStore
}

// NewUserHandler creates a new user handler
func NewUserHandler(store analysis.UserStore) *UserHandler {
	return &UserHandler{
		store: store,
	}
}

// SaveUser upserts a user record
func (h *UserHandler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var user analysis.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user data", err)
		return
	}

	if user.UID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing uid", nil)
		return
	}

	if err := h.store.Upsert(r.Context(), user); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "user saved"})
}

// GetUser returns a user record by uid
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		respondWithError(w, http.StatusBadRequest, "Missing uid", nil)
		return
	}

	user, err := h.store.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, analysis.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get user", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}
