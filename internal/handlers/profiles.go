package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/storage"
	"github.com/pequenospassos/habit-api/internal/store"
)

// ProfileHandler handles profile selection. Switching the active profile
// repoints every namespaced key and reloads the task store from the new
// namespace.
type ProfileHandler struct {
	storage *storage.Service
	store   *store.TaskStore
	logger  *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc *storage.Service, taskStore *store.TaskStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{storage: svc, store: taskStore, logger: logger}
}

// RegisterRoutes registers profile routes on the given router.
// The router should already have the /profiles prefix.
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListProfiles).Methods("GET")
	r.HandleFunc("/current", h.GetCurrentProfile).Methods("GET")
	r.HandleFunc("/current", h.SetCurrentProfile).Methods("PUT")
}

// SetProfileRequest represents a profile switch request
type SetProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ListProfiles returns every profile name known to the backend
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.storage.AvailableProfiles(r.Context()))
}

// GetCurrentProfile returns the active profile name, empty when none is
// selected yet
func (h *ProfileHandler) GetCurrentProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"name": h.storage.CurrentProfile()})
}

// SetCurrentProfile switches the active profile and reloads the task store
// from its namespace. Unknown names create a fresh profile.
func (h *ProfileHandler) SetCurrentProfile(w http.ResponseWriter, r *http.Request) {
	var req SetProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Profile name is required")
		return
	}

	ctx := r.Context()
	h.storage.SetCurrentProfile(ctx, req.Name)
	h.store.Load(ctx)

	h.logger.Info("profile_switched", zap.String("profile", req.Name))
	respondJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}
