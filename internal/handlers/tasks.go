package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/pdca"
	"github.com/pequenospassos/habit-api/internal/store"
	"github.com/pequenospassos/habit-api/internal/validation"
)

const (
	// MaxTaskTitleLength is the maximum length for a task title
	MaxTaskTitleLength = 500
	// MaxTaskDescriptionLength is the maximum length for a task description
	MaxTaskDescriptionLength = 5000
)

// TaskHandler handles task CRUD requests
type TaskHandler struct {
	store  *store.TaskStore
	pages  map[string]*pdca.PageHandler // category name -> page
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler. pages routes completion
// toggles through the matching category page so gamification side effects
// apply; tasks without a page category toggle without side effects.
func NewTaskHandler(taskStore *store.TaskStore, pages map[string]*pdca.PageHandler, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{store: taskStore, pages: pages, logger: logger}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"max=500"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Reminder    int    `json:"reminder" validate:"min=0"`
}

func (req *CreateTaskRequest) validate() error {
	if err := validation.Validate.Struct(req); err != nil {
		return err
	}
	if req.Priority != "" {
		if err := validation.ValidatePriority(req.Priority); err != nil {
			return err
		}
	}
	if err := validation.ValidateDate(req.DueDate); err != nil {
		return err
	}
	if err := validation.ValidateTimeOfDay(req.StartTime); err != nil {
		return err
	}
	return validation.ValidateTimeOfDay(req.EndTime)
}

// ListTasks lists the active profile's tasks, optionally filtered by
// category and/or due date
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	date := r.URL.Query().Get("date")

	tasks := h.store.Tasks()
	filtered := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if category != "" && t.Category != category {
			continue
		}
		if date != "" && t.DueDate != date {
			continue
		}
		filtered = append(filtered, t)
	}

	respondJSON(w, http.StatusOK, filtered)
}

// CreateTask creates a new task from the request draft
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	task := h.store.AddTask(r.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    models.Priority(req.Priority),
		DueDate:     req.DueDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reminder:    req.Reminder,
	})

	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns a single task by id
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task := h.store.Task(id)
	if task == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask merges a partial update into the task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.store.Task(id) == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	var patch models.TaskPatch
	if err := decodeJSONBody(r, &patch); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid priority")
		return
	}
	if patch.DueDate != nil {
		if err := validation.ValidateDate(*patch.DueDate); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	if patch.StartTime != nil {
		if err := validation.ValidateTimeOfDay(*patch.StartTime); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	h.store.UpdateTask(r.Context(), id, patch)
	respondJSON(w, http.StatusOK, h.store.Task(id))
}

// DeleteTask removes a task. The client's confirmation dialog result
// travels as the confirm query parameter; without confirm=true the delete
// is declined and nothing changes.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.store.Task(id) == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	ctx := store.WithConfirmation(r.Context(), confirmed)

	if !h.store.DeleteTask(ctx, id) {
		respondJSONError(w, http.StatusConflict, "Conflict", "Deletion not confirmed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ToggleTask flips a task's completion state. Tasks in a life-area
// category go through the category page so completion grants points,
// streak and medal credit; other tasks just flip the flag.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task := h.store.Task(id)
	if task == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	if page, ok := h.pages[task.Category]; ok {
		result := page.ToggleTask(r.Context(), id)
		respondJSON(w, http.StatusOK, result)
		return
	}

	completed := !task.Completed
	h.store.UpdateTask(r.Context(), id, models.TaskPatch{Completed: &completed})
	respondJSON(w, http.StatusOK, h.store.Task(id))
}
