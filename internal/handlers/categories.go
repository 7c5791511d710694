package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/store"
)

// CategoryHandler handles category list requests
type CategoryHandler struct {
	store  *store.TaskStore
	logger *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(taskStore *store.TaskStore, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{store: taskStore, logger: logger}
}

// RegisterRoutes registers category routes on the given router.
// The router should already have the /categories prefix.
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.AddCategory).Methods("POST")
}

// AddCategoryRequest represents an add category request
type AddCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ListCategories returns the active profile's category names
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Categories())
}

// AddCategory appends a user-defined category name
func (h *CategoryHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Category name is required")
		return
	}

	if !h.store.AddCategory(r.Context(), req.Name) {
		respondJSONError(w, http.StatusConflict, "Conflict", "Category already exists")
		return
	}

	respondJSON(w, http.StatusCreated, h.store.Categories())
}
