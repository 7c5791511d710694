package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/store"
	"github.com/pequenospassos/habit-api/internal/validation"
)

// PlannerHandler renders the daily planner: every task due on a given
// date, grouped by category and ordered by start time
type PlannerHandler struct {
	store  *store.TaskStore
	logger *zap.Logger
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(taskStore *store.TaskStore, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{store: taskStore, logger: logger}
}

// RegisterRoutes registers planner routes on the given router.
// The router should already have the /planner prefix.
func (h *PlannerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{date}", h.GetDay).Methods("GET")
}

// PlannerGroup is one category's schedule for the day
type PlannerGroup struct {
	Category string         `json:"category"`
	Tasks    []*models.Task `json:"tasks"`
}

// PlannerDay is the full daily planner view
type PlannerDay struct {
	Date      string          `json:"date"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Groups    []*PlannerGroup `json:"groups"`
}

// GetDay returns the planner view for one date
func (h *PlannerHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if err := validation.ValidateDate(date); err != nil || date == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date, must be YYYY-MM-DD")
		return
	}

	byCategory := map[string][]*models.Task{}
	var order []string
	day := &PlannerDay{Date: date}

	for _, t := range h.store.Tasks() {
		if t.DueDate != date {
			continue
		}
		day.Total++
		if t.Completed {
			day.Completed++
		}
		if _, seen := byCategory[t.Category]; !seen {
			order = append(order, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	sort.Strings(order)
	for _, category := range order {
		tasks := byCategory[category]
		sort.SliceStable(tasks, func(i, j int) bool {
			return plannerSortTime(tasks[i].StartTime) < plannerSortTime(tasks[j].StartTime)
		})
		day.Groups = append(day.Groups, &PlannerGroup{Category: category, Tasks: tasks})
	}

	respondJSON(w, http.StatusOK, day)
}

// plannerSortTime maps an empty start time past every scheduled slot
func plannerSortTime(hhmm string) string {
	if hhmm == "" {
		return "23:59"
	}
	return hhmm
}
