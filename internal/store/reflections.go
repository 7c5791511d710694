package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// Reflections returns the journal entries, newest first
func (s *TaskStore) Reflections() []*models.Reflection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reflections
}

// AddReflection stores a new journal entry, prepended, and persists the
// reflection list under its own key
func (s *TaskStore) AddReflection(ctx context.Context, draft models.Reflection) *models.Reflection {
	s.mu.Lock()
	defer s.mu.Unlock()

	reflection := draft
	reflection.ID = uuid.NewString()
	reflection.Timestamp = time.Now()
	if reflection.Date == "" {
		reflection.Date = reflection.Timestamp.Format("2006-01-02")
	}

	s.reflections = append([]*models.Reflection{&reflection}, s.reflections...)
	s.storage.Set(ctx, storage.KeyReflections, s.reflections)
	return &reflection
}

// DeleteReflection removes the entry after user confirmation. Declined or
// unknown ids return false.
func (s *TaskStore) DeleteReflection(ctx context.Context, id string) bool {
	s.mu.Lock()
	var target *models.Reflection
	for _, r := range s.reflections {
		if r.ID == id {
			target = r
			break
		}
	}
	s.mu.Unlock()
	if target == nil {
		return false
	}

	message := fmt.Sprintf("Tem certeza que deseja excluir a reflexão %q?", target.Title)
	if !s.confirmer.Confirm(ctx, message) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reflections {
		if r.ID == id {
			s.reflections = append(s.reflections[:i], s.reflections[i+1:]...)
			s.storage.Set(ctx, storage.KeyReflections, s.reflections)
			return true
		}
	}
	return false
}
