package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/pdca"
)

// PageHandler exposes the seven life-area pages over HTTP. Pages are
// addressed by their normalized key ("fisica", "mental", ...).
type PageHandler struct {
	pages  map[string]*pdca.PageHandler // page key -> page
	logger *zap.Logger
}

// NewPageHandler creates the HTTP wrapper over the category pages
func NewPageHandler(pages map[string]*pdca.PageHandler, logger *zap.Logger) *PageHandler {
	return &PageHandler{pages: pages, logger: logger}
}

// RegisterRoutes registers page routes on the given router.
// The router should already have the /pages prefix.
func (h *PageHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{category}", h.ShowPage).Methods("GET")
	r.HandleFunc("/{category}/tasks", h.AddPageTask).Methods("POST")
	r.HandleFunc("/{category}/tasks/{id}/toggle", h.TogglePageTask).Methods("POST")
}

func (h *PageHandler) page(w http.ResponseWriter, r *http.Request) *pdca.PageHandler {
	key := mux.Vars(r)["category"]
	page, ok := h.pages[pdca.CategoryKey(key)]
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Unknown page")
		return nil
	}
	return page
}

// ShowPage renders today's task list for the category
func (h *PageHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r)
	if page == nil {
		return
	}
	respondJSON(w, http.StatusOK, page.Show())
}

// AddPageTask creates a task pre-filled with the page's category and
// today's date
func (h *PageHandler) AddPageTask(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r)
	if page == nil {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	task := page.AddTaskForCategory(r.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		DueDate:     req.DueDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reminder:    req.Reminder,
	})

	respondJSON(w, http.StatusCreated, task)
}

// TogglePageTask flips a task's completion on this page, applying
// gamification side effects on incomplete to complete transitions
func (h *PageHandler) TogglePageTask(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r)
	if page == nil {
		return
	}

	id := mux.Vars(r)["id"]
	result := page.ToggleTask(r.Context(), id)
	if result == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
