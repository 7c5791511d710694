package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/storage"
)

// MaxUIStateSize caps a single UI-state blob
const MaxUIStateSize = 64 * 1024

// UIHandler persists small per-page UI state blobs (expand/collapse flags
// and the like) and the global theme. UI state is profile-scoped; the
// theme is shared across profiles.
type UIHandler struct {
	storage *storage.Service
	logger  *zap.Logger
}

// NewUIHandler creates a new UI state handler
func NewUIHandler(svc *storage.Service, logger *zap.Logger) *UIHandler {
	return &UIHandler{storage: svc, logger: logger}
}

// RegisterRoutes registers UI state routes on the given router.
// The router should already have the /ui prefix.
func (h *UIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/theme", h.GetTheme).Methods("GET")
	r.HandleFunc("/theme", h.SetTheme).Methods("PUT")
	r.HandleFunc("/state/{key}", h.GetState).Methods("GET")
	r.HandleFunc("/state/{key}", h.SetState).Methods("PUT")
}

// GetState returns the stored UI state blob for a page key, or null
func (h *UIHandler) GetState(w http.ResponseWriter, r *http.Request) {
	key := storage.KeyUIStatePrefix + mux.Vars(r)["key"]
	raw := h.storage.GetRaw(r.Context(), key)
	if raw == nil {
		raw = json.RawMessage("null")
	}
	respondJSON(w, http.StatusOK, raw)
}

// SetState stores a UI state blob verbatim
func (h *UIHandler) SetState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxUIStateSize))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to read body")
		return
	}
	if !json.Valid(body) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Body must be valid JSON")
		return
	}

	key := storage.KeyUIStatePrefix + mux.Vars(r)["key"]
	if !h.storage.Set(r.Context(), key, json.RawMessage(body)) {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to persist UI state")
		return
	}
	respondJSON(w, http.StatusOK, json.RawMessage(body))
}

// ThemeRequest carries the theme name
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// GetTheme returns the global theme, defaulting to light
func (h *UIHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme := "light"
	h.storage.Get(r.Context(), storage.KeyTheme, &theme)
	respondJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// SetTheme stores the global theme
func (h *UIHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Theme must be light or dark")
		return
	}

	h.storage.Set(r.Context(), storage.KeyTheme, req.Theme)
	respondJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}
