package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/services/ai"
	"github.com/pequenospassos/habit-api/internal/store"
	"github.com/pequenospassos/habit-api/internal/validation"
)

// ReflectionHandler handles journal entries and their AI features. The AI
// provider may be nil; insight endpoints then answer 503.
type ReflectionHandler struct {
	store    *store.TaskStore
	provider ai.Provider
	logger   *zap.Logger
}

// NewReflectionHandler creates a new reflection handler
func NewReflectionHandler(taskStore *store.TaskStore, provider ai.Provider, logger *zap.Logger) *ReflectionHandler {
	return &ReflectionHandler{store: taskStore, provider: provider, logger: logger}
}

// RegisterRoutes registers reflection routes on the given router.
// The router should already have the /reflections prefix.
func (h *ReflectionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListReflections).Methods("GET")
	r.HandleFunc("", h.AddReflection).Methods("POST")
	r.HandleFunc("/insights", h.Insights).Methods("POST")
	r.HandleFunc("/prompt", h.SuggestPrompt).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteReflection).Methods("DELETE")
}

// AddReflectionRequest represents a new journal entry
type AddReflectionRequest struct {
	Category string `json:"category" validate:"max=100"`
	Title    string `json:"title" validate:"required,max=200"`
	Text     string `json:"text" validate:"required,max=10000"`
	Date     string `json:"date"`
}

// ListReflections returns the journal entries, newest first
func (h *ReflectionHandler) ListReflections(w http.ResponseWriter, r *http.Request) {
	reflections := h.store.Reflections()
	if reflections == nil {
		reflections = []*models.Reflection{}
	}
	respondJSON(w, http.StatusOK, reflections)
}

// AddReflection stores a new journal entry
func (h *ReflectionHandler) AddReflection(w http.ResponseWriter, r *http.Request) {
	var req AddReflectionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.ValidateDate(req.Date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	reflection := h.store.AddReflection(r.Context(), models.Reflection{
		Category: req.Category,
		Title:    req.Title,
		Text:     req.Text,
		Date:     req.Date,
	})

	respondJSON(w, http.StatusCreated, reflection)
}

// DeleteReflection removes a journal entry. Like task deletion, the
// client's confirmation travels as the confirm query parameter.
func (h *ReflectionHandler) DeleteReflection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	confirmed := r.URL.Query().Get("confirm") == "true"
	ctx := store.WithConfirmation(r.Context(), confirmed)

	if !h.store.DeleteReflection(ctx, id) {
		respondJSONError(w, http.StatusConflict, "Conflict", "Deletion not confirmed or reflection not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// Insights generates an AI insight over the stored reflections
func (h *ReflectionHandler) Insights(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "AI features are not configured")
		return
	}

	reflections := h.store.Reflections()
	if len(reflections) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No reflections to analyze")
		return
	}

	insight, err := h.provider.ReflectionInsights(r.Context(), reflections)
	if err != nil {
		h.logger.Warn("reflection_insights_failed", zap.Error(err))
		if ai.IsRateLimitError(err) || ai.IsQuotaError(err) {
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "AI provider is rate limited")
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Insight generation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"insight": insight})
}

// SuggestPrompt returns an AI-generated reflection prompt for a category
func (h *ReflectionHandler) SuggestPrompt(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "AI features are not configured")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "category query parameter is required")
		return
	}

	prompt, err := h.provider.SuggestPrompt(r.Context(), category)
	if err != nil {
		h.logger.Warn("suggest_prompt_failed", zap.Error(err))
		if ai.IsRateLimitError(err) || ai.IsQuotaError(err) {
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "AI provider is rate limited")
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Prompt suggestion failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}
