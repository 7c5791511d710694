package pdca

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/gamification"
	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
	"github.com/pequenospassos/habit-api/internal/store"
)

var testDay = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestPage(t *testing.T, category string) (*PageHandler, *store.TaskStore, *gamification.Engine) {
	t.Helper()

	svc := storage.NewService(storage.NewMemoryBackend(), zap.NewNop())
	svc.SetCurrentProfile(context.Background(), "test")
	bus := events.NewBus()
	engine := gamification.NewEngine(svc, bus, zap.NewNop())
	engine.SetClock(func() time.Time { return testDay })

	taskStore := store.NewTaskStore(svc, bus, store.ContextConfirmer{}, zap.NewNop())
	taskStore.Load(context.Background())

	page := NewPageHandler(category, PageIDFor(category), taskStore, engine, bus, nil, zap.NewNop())
	page.SetClock(func() time.Time { return testDay })
	return page, taskStore, engine
}

func TestCategoryKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Física", "fisica"},
		{"Mental", "mental"},
		{"Financeira", "financeira"},
		{"Espiritual", "espiritual"},
		{"Saúde", "saude"},
	}

	for _, tt := range tests {
		if got := CategoryKey(tt.in); got != tt.want {
			t.Errorf("CategoryKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShowFiltersAndSorts(t *testing.T) {
	t.Parallel()

	page, taskStore, _ := newTestPage(t, "Física")
	ctx := context.Background()
	today := testDay.Format("2006-01-02")

	taskStore.AddTask(ctx, models.Task{Title: "tarde", Category: "Física", DueDate: today, StartTime: "14:00"})
	taskStore.AddTask(ctx, models.Task{Title: "sem horário", Category: "Física", DueDate: today})
	taskStore.AddTask(ctx, models.Task{Title: "manhã", Category: "Física", DueDate: today, StartTime: "07:30"})
	taskStore.AddTask(ctx, models.Task{Title: "outra categoria", Category: "Mental", DueDate: today, StartTime: "06:00"})
	taskStore.AddTask(ctx, models.Task{Title: "outro dia", Category: "Física", DueDate: "2026-03-11", StartTime: "08:00"})

	view := page.Show()
	if len(view.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks for today's Física page, got %d", len(view.Tasks))
	}

	want := []string{"manhã", "tarde", "sem horário"}
	for i, title := range want {
		if view.Tasks[i].Title != title {
			t.Errorf("Expected task %d to be %q, got %q", i, title, view.Tasks[i].Title)
		}
	}
}

func TestAddTaskForCategoryPrefills(t *testing.T) {
	t.Parallel()

	page, _, _ := newTestPage(t, "Mental")
	ctx := context.Background()

	task := page.AddTaskForCategory(ctx, models.Task{Title: "meditar"})
	if task.Category != "Mental" {
		t.Errorf("Expected category Mental, got %q", task.Category)
	}
	if task.DueDate != testDay.Format("2006-01-02") {
		t.Errorf("Expected due date today, got %q", task.DueDate)
	}
}

func TestToggleTaskAwardsPointsAndStreak(t *testing.T) {
	t.Parallel()

	page, _, engine := newTestPage(t, "Física")
	ctx := context.Background()

	task := page.AddTaskForCategory(ctx, models.Task{Title: "correr", Priority: models.PriorityHigh})

	result := page.ToggleTask(ctx, task.ID)
	if result == nil {
		t.Fatal("Expected a toggle result")
	}
	if result.PointsAwarded != 20 {
		t.Errorf("Expected 20 points for high priority, got %d", result.PointsAwarded)
	}
	if result.Streak.Current != 1 {
		t.Errorf("Expected streak 1, got %d", result.Streak.Current)
	}

	// Only task this category+date, so completing it earns the medal
	if !result.MedalAwarded {
		t.Error("Expected the category medal")
	}

	// Task 20 + streak 25 + medal 50 = 95 PS, below the level-2 threshold
	profile := engine.Profile(ctx)
	if profile.PS != 95 || profile.Level != 1 {
		t.Errorf("Expected 95 PS at level 1, got %d PS at level %d", profile.PS, profile.Level)
	}
}

func TestToggleMedalNeedsWholeCategory(t *testing.T) {
	t.Parallel()

	page, _, _ := newTestPage(t, "Física")
	ctx := context.Background()

	first := page.AddTaskForCategory(ctx, models.Task{Title: "correr"})
	second := page.AddTaskForCategory(ctx, models.Task{Title: "alongar"})

	result := page.ToggleTask(ctx, first.ID)
	if result.MedalAwarded {
		t.Error("Expected no medal while a category task is open")
	}

	result = page.ToggleTask(ctx, second.ID)
	if !result.MedalAwarded {
		t.Error("Expected the medal once every category task is complete")
	}
}

func TestToggleBackDoesNotReverse(t *testing.T) {
	t.Parallel()

	page, _, engine := newTestPage(t, "Física")
	ctx := context.Background()

	task := page.AddTaskForCategory(ctx, models.Task{Title: "correr"})
	page.ToggleTask(ctx, task.ID)
	psAfterComplete := engine.Profile(ctx).PS

	// Un-completing keeps every previously granted credit
	result := page.ToggleTask(ctx, task.ID)
	if result.PointsAwarded != 0 {
		t.Errorf("Expected no points on un-complete, got %d", result.PointsAwarded)
	}
	if ps := engine.Profile(ctx).PS; ps != psAfterComplete {
		t.Errorf("Expected PS unchanged at %d, got %d", psAfterComplete, ps)
	}
	if engine.Streak(ctx).Current != 1 {
		t.Error("Expected streak retained after un-complete")
	}

	// Re-completing the same day earns task points again but no second
	// streak increment and no second medal
	result = page.ToggleTask(ctx, task.ID)
	if result.Streak.Current != 1 {
		t.Errorf("Expected streak still 1, got %d", result.Streak.Current)
	}
	if result.MedalAwarded {
		t.Error("Expected no repeat medal for the same date")
	}
}

func TestToggleUnknownTask(t *testing.T) {
	t.Parallel()

	page, _, _ := newTestPage(t, "Física")
	if result := page.ToggleTask(context.Background(), "missing"); result != nil {
		t.Errorf("Expected nil result for unknown task, got %+v", result)
	}
}

func TestSetupRerendersOnChange(t *testing.T) {
	t.Parallel()

	svc := storage.NewService(storage.NewMemoryBackend(), zap.NewNop())
	svc.SetCurrentProfile(context.Background(), "test")
	bus := events.NewBus()
	engine := gamification.NewEngine(svc, bus, zap.NewNop())
	taskStore := store.NewTaskStore(svc, bus, store.ContextConfirmer{}, zap.NewNop())
	taskStore.Load(context.Background())

	active := "fisica"
	page := NewPageHandler("Física", "fisica", taskStore, engine, bus, func() string { return active }, zap.NewNop())
	page.SetClock(func() time.Time { return testDay })
	page.Setup()
	page.Setup() // idempotent

	today := testDay.Format("2006-01-02")
	taskStore.AddTask(context.Background(), models.Task{Title: "correr", Category: "Física", DueDate: today})

	page.mu.Lock()
	view := page.lastView
	page.mu.Unlock()
	if view == nil || len(view.Tasks) != 1 {
		t.Fatalf("Expected the subscription to refresh the cached view, got %+v", view)
	}

	// While another route is active the page skips the refresh
	active = "mental"
	taskStore.AddTask(context.Background(), models.Task{Title: "nadar", Category: "Física", DueDate: today})

	page.mu.Lock()
	view = page.lastView
	page.mu.Unlock()
	if len(view.Tasks) != 1 {
		t.Errorf("Expected stale view while route is inactive, got %d tasks", len(view.Tasks))
	}
}
