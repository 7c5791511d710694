// Package ai provides the text-generation calls used by the reflection
// pages: insight generation over journal entries and reflection-prompt
// suggestions. Failures never touch local state; call sites surface them
// as toast-style errors.
package ai

import (
	"context"

	"github.com/pequenospassos/habit-api/internal/models"
)

// Provider is the interface for AI text generation
type Provider interface {
	// ReflectionInsights generates a short insight text over the user's
	// recent journal entries
	ReflectionInsights(ctx context.Context, reflections []*models.Reflection) (string, error)

	// SuggestPrompt returns a reflection prompt for a life-area category
	SuggestPrompt(ctx context.Context, category string) (string, error)
}
