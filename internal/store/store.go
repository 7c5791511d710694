// Package store holds the canonical in-memory task and category collections
// for the active profile. Every mutation persists the whole collection back
// to storage and broadcasts a single TasksChanged event.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// DefaultTaskTitle fills in for tasks added without a title. Title presence
// is enforced at the request boundary, not here.
const DefaultTaskTitle = "Nova Tarefa"

// TaskStore is the single source of truth for tasks, categories and
// reflections, consumed by every page handler
type TaskStore struct {
	mu        sync.Mutex
	storage   *storage.Service
	bus       *events.Bus
	logger    *zap.Logger
	confirmer Confirmer

	tasks       []*models.Task
	categories  []string
	reflections []*models.Reflection
}

// NewTaskStore creates an empty store. Call Load after a profile is
// activated to populate it.
func NewTaskStore(svc *storage.Service, bus *events.Bus, confirmer Confirmer, logger *zap.Logger) *TaskStore {
	return &TaskStore{
		storage:   svc,
		bus:       bus,
		logger:    logger,
		confirmer: confirmer,
	}
}

// Load replaces the in-memory collections with the active profile's
// persisted data, seeding the default category list when none is stored
func (s *TaskStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.storage.Get(ctx, storage.KeyTasksData, &s.tasks)

	s.categories = nil
	if !s.storage.Get(ctx, storage.KeyTasksCategories, &s.categories) {
		s.categories = models.DefaultCategories()
	}

	s.reflections = nil
	s.storage.Get(ctx, storage.KeyReflections, &s.reflections)

	s.logger.Info("task_store_loaded",
		zap.Int("tasks", len(s.tasks)),
		zap.Int("categories", len(s.categories)),
		zap.Int("reflections", len(s.reflections)),
	)
}

// persistLocked writes the whole task and category collections back to
// storage. Failed writes are logged by the storage layer; the in-memory
// state keeps the mutation either way. Callers broadcast TasksChanged only
// after releasing s.mu: subscribers read back through the store, so
// publishing under the lock would deadlock them.
func (s *TaskStore) persistLocked(ctx context.Context) {
	s.storage.Set(ctx, storage.KeyTasksData, s.tasks)
	s.storage.Set(ctx, storage.KeyTasksCategories, s.categories)
}

// Tasks returns the live in-memory collection, newest first. Callers must
// not assume a copy.
func (s *TaskStore) Tasks() []*models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks
}

// Task returns the task with the given id, or nil
func (s *TaskStore) Task(id string) *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *TaskStore) findLocked(id string) *models.Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Categories returns the category name list
func (s *TaskStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

// AddTask fills defaults into the draft, prepends it to the collection,
// persists and broadcasts. It returns the stored task.
func (s *TaskStore) AddTask(ctx context.Context, draft models.Task) *models.Task {
	s.mu.Lock()
	task := draft
	task.ID = uuid.NewString()
	task.Completed = false
	task.ReminderSent = false
	if task.Title == "" {
		task.Title = DefaultTaskTitle
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	s.tasks = append([]*models.Task{&task}, s.tasks...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Publish(events.TasksChanged{})
	return &task
}

// UpdateTask merges the patch into the task with the given id. Unknown ids
// are a silent no-op.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return
	}
	patch.Apply(task)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Publish(events.TasksChanged{})
}

// DeleteTask removes the task after the user confirms. A declined
// confirmation or an unknown id leaves the collection unchanged and
// returns false.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	s.mu.Unlock()
	if task == nil {
		return false
	}

	message := fmt.Sprintf("Tem certeza que deseja excluir a tarefa %q?", task.Title)
	if !s.confirmer.Confirm(ctx, message) {
		return false
	}

	s.mu.Lock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.persistLocked(ctx)
			s.mu.Unlock()

			s.bus.Publish(events.TasksChanged{})
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// AddCategory appends a new category name. Empty and exact-duplicate names
// are rejected.
func (s *TaskStore) AddCategory(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}

	s.mu.Lock()
	for _, c := range s.categories {
		if c == name {
			s.mu.Unlock()
			return false
		}
	}
	s.categories = append(s.categories, name)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.bus.Publish(events.TasksChanged{})
	return true
}
