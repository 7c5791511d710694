package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/gamification"
	"github.com/pequenospassos/habit-api/internal/models"
)

// GamificationHandler exposes the read side of the gamification engine:
// profile, streak, medals, achievements and the milestone table. All
// awarding happens through task completion, never through this surface.
type GamificationHandler struct {
	engine *gamification.Engine
	logger *zap.Logger
}

// NewGamificationHandler creates a new gamification handler
func NewGamificationHandler(engine *gamification.Engine, logger *zap.Logger) *GamificationHandler {
	return &GamificationHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers gamification routes on the given router.
// The router should already have the /gamification prefix.
func (h *GamificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetProfile).Methods("GET")
	r.HandleFunc("/streak", h.GetStreak).Methods("GET")
	r.HandleFunc("/medals", h.GetMedals).Methods("GET")
	r.HandleFunc("/achievements", h.GetAchievements).Methods("GET")
	r.HandleFunc("/milestones", h.GetMilestones).Methods("GET")
}

// GetProfile returns the level and point progression
func (h *GamificationHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Profile(r.Context()))
}

// GetStreak returns the current streak, evaluated against today
func (h *GamificationHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Streak(r.Context()))
}

// GetMedals returns the date to completed-category map
func (h *GamificationHandler) GetMedals(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Medals(r.Context()))
}

// GetAchievements returns the permanently recorded achievement ids
func (h *GamificationHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements := h.engine.Achievements(r.Context())
	if achievements == nil {
		achievements = []string{}
	}
	respondJSON(w, http.StatusOK, achievements)
}

// GetMilestones returns the fixed streak milestone table
func (h *GamificationHandler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.StreakMilestones)
}
