// Package pdca provides the parameterized page handler shared by the seven
// life-area pages (Física, Mental, Financeira, Familiar, Profissional,
// Social, Espiritual). Each page follows the same Plan-Do-Check-Act
// template: a task list for today plus completion handling wired into the
// gamification engine.
package pdca

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/gamification"
	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/store"
)

// Categories lists the seven categories that get a PDCA page
var Categories = []string{
	string(models.CategoryFisica),
	string(models.CategoryMental),
	string(models.CategoryFinanceira),
	string(models.CategoryFamiliar),
	string(models.CategoryProfissional),
	string(models.CategorySocial),
	string(models.CategoryEspiritual),
}

// RouteFunc reports the currently visible route (page id). The page's
// change subscription refreshes its cached view only while its own route
// is active.
type RouteFunc func() string

// PageView is the rendered task list for one category page
type PageView struct {
	Category string         `json:"category"`
	PageID   string         `json:"pageId"`
	Date     string         `json:"date"`
	Tasks    []*models.Task `json:"tasks"`
}

// ToggleResult describes the gamification side effects of a checkbox toggle
type ToggleResult struct {
	Task          *models.Task  `json:"task"`
	PointsAwarded int           `json:"pointsAwarded"`
	MedalAwarded  bool          `json:"medalAwarded"`
	Streak        models.Streak `json:"streak"`
}

// PageHandler is the {Setup, Show} pair produced by NewPageHandler for one
// category page
type PageHandler struct {
	category string
	pageID   string
	store    *store.TaskStore
	engine   *gamification.Engine
	bus      *events.Bus
	logger   *zap.Logger
	route    RouteFunc
	now      func() time.Time

	setupOnce sync.Once

	mu       sync.Mutex
	lastView *PageView
}

// NewPageHandler builds the handler for one category. The route function
// may be nil; the change subscription then refreshes unconditionally.
func NewPageHandler(category, pageID string, taskStore *store.TaskStore, engine *gamification.Engine, bus *events.Bus, route RouteFunc, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		category: category,
		pageID:   pageID,
		store:    taskStore,
		engine:   engine,
		bus:      bus,
		logger:   logger,
		route:    route,
		now:      time.Now,
	}
}

// Category returns the page's category name
func (p *PageHandler) Category() string { return p.category }

// PageID returns the page's route id
func (p *PageHandler) PageID() string { return p.pageID }

// SetClock overrides "today" for tests
func (p *PageHandler) SetClock(now func() time.Time) { p.now = now }

// Setup subscribes the page to task-change broadcasts. It is idempotent
// and safe to skip entirely; Show always computes a fresh view.
func (p *PageHandler) Setup() {
	p.setupOnce.Do(func() {
		p.bus.Subscribe(func(e events.Event) {
			if _, ok := e.(events.TasksChanged); !ok {
				return
			}
			if p.route != nil && p.route() != p.pageID {
				return
			}
			view := p.render()
			p.mu.Lock()
			p.lastView = view
			p.mu.Unlock()
			p.logger.Debug("page_rerendered",
				zap.String("page", p.pageID),
				zap.Int("tasks", len(view.Tasks)),
			)
		})
	})
}

// Show renders today's tasks for this category, sorted by start time with
// unscheduled tasks last
func (p *PageHandler) Show() *PageView {
	view := p.render()
	p.mu.Lock()
	p.lastView = view
	p.mu.Unlock()
	return view
}

func (p *PageHandler) render() *PageView {
	today := p.now().Format("2006-01-02")

	var tasks []*models.Task
	for _, t := range p.store.Tasks() {
		if t.DueDate == today && t.Category == p.category {
			tasks = append(tasks, t)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return sortTime(tasks[i].StartTime) < sortTime(tasks[j].StartTime)
	})

	return &PageView{
		Category: p.category,
		PageID:   p.pageID,
		Date:     today,
		Tasks:    tasks,
	}
}

// sortTime maps an empty start time past every scheduled slot
func sortTime(hhmm string) string {
	if hhmm == "" {
		return "23:59"
	}
	return hhmm
}

// AddTaskForCategory creates a task pre-filled with this page's category
// and today's date
func (p *PageHandler) AddTaskForCategory(ctx context.Context, draft models.Task) *models.Task {
	draft.Category = p.category
	if draft.DueDate == "" {
		draft.DueDate = p.now().Format("2006-01-02")
	}
	return p.store.AddTask(ctx, draft)
}

// ToggleTask flips the task's completion state. Only the
// incomplete→complete transition has side effects: task points by
// priority, a streak update, and the category medal when every task of
// this category due on the same date is now complete. Un-completing a task
// never reverses previously granted credit.
func (p *PageHandler) ToggleTask(ctx context.Context, taskID string) *ToggleResult {
	task := p.store.Task(taskID)
	if task == nil {
		return nil
	}

	wasCompleted := task.Completed
	nowCompleted := !wasCompleted
	p.store.UpdateTask(ctx, taskID, models.TaskPatch{Completed: &nowCompleted})

	result := &ToggleResult{Task: task}
	if !nowCompleted || wasCompleted {
		result.Streak = p.engine.Streak(ctx)
		return result
	}

	// One user click can grant task, streak, medal and milestone points;
	// the batch applies them as a single profile update
	p.engine.BeginBatch()

	points := task.Priority.Points()
	p.engine.AwardPoints(ctx, points)
	result.PointsAwarded = points
	result.Streak = p.engine.UpdateStreak(ctx)

	if p.allCategoryTasksComplete(task.DueDate) {
		result.MedalAwarded = p.engine.AwardMedalForCategory(ctx, CategoryKey(p.category), task.DueDate)
	}

	p.engine.EndBatch(ctx)
	return result
}

func (p *PageHandler) allCategoryTasksComplete(dueDate string) bool {
	any := false
	for _, t := range p.store.Tasks() {
		if t.Category != p.category || t.DueDate != dueDate {
			continue
		}
		any = true
		if !t.Completed {
			return false
		}
	}
	return any
}

var diacritics = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u",
	"ç", "c",
)

// CategoryKey normalizes a category name to its storage key: lowercase,
// diacritics stripped ("Física" → "fisica")
func CategoryKey(category string) string {
	return diacritics.Replace(strings.ToLower(category))
}

// PageIDFor returns the route id for a category ("page-fisica" → "fisica"
// style ids follow the original page naming)
func PageIDFor(category string) string {
	return CategoryKey(category)
}
