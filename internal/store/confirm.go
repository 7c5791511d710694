package store

import "context"

// Confirmer resolves a yes/no question with the user before a destructive
// operation proceeds. The HTTP layer answers it from the request's explicit
// confirmation flag; tests inject stubs.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, message string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool {
	return f(ctx, message)
}

type confirmKeyType struct{}

var confirmKey confirmKeyType

// WithConfirmation marks the context as carrying the user's confirmation
// answer for destructive operations
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey, confirmed)
}

// ContextConfirmer reads the confirmation answer from the context; an
// unmarked context counts as declined
type ContextConfirmer struct{}

// Confirm returns the answer carried by the context
func (ContextConfirmer) Confirm(ctx context.Context, _ string) bool {
	confirmed, ok := ctx.Value(confirmKey).(bool)
	return ok && confirmed
}
