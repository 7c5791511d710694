package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by backends when a key has no value
var ErrNotFound = errors.New("storage: key not found")

// Backend is the persistent key-value layer underneath the Service.
// Values are opaque JSON documents.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryBackend is an in-process backend used by tests and by the
// configure CLI's dry-run mode
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailWrites simulates quota exhaustion: every Store returns an error
	// while the flag is set
	FailWrites bool
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Load returns the stored value or ErrNotFound
func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Store saves the value, or fails when FailWrites is set
func (m *MemoryBackend) Store(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errors.New("storage quota exceeded")
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error { return nil }
