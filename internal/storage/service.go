// Package storage implements the profile-namespaced key-value service that
// every other component persists through. Values are JSON documents; a small
// bounded cache in front of the backend skips repeated load round-trips.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// DefaultCacheSize is the bound on the in-memory entry cache
const DefaultCacheSize = 50

const profileSeparator = "__"

// Service wraps a Backend with per-profile key prefixing and a bounded
// insertion-order cache. All profile-scoped operations silently no-op while
// no profile is selected.
type Service struct {
	mu        sync.Mutex
	backend   Backend
	logger    *zap.Logger
	profile   string
	cache     map[string]json.RawMessage
	cacheSize int
	order     []string // cache keys, oldest first
}

// NewService creates a storage service over the backend. The previously
// selected profile, if any, is restored from the backend.
func NewService(backend Backend, logger *zap.Logger) *Service {
	s := &Service{
		backend:   backend,
		logger:    logger,
		cache:     make(map[string]json.RawMessage),
		cacheSize: DefaultCacheSize,
	}

	if raw, err := backend.Load(context.Background(), KeyCurrentProfile); err == nil {
		var profile string
		if err := json.Unmarshal(raw, &profile); err == nil {
			s.profile = profile
		}
	}

	return s
}

// CurrentProfile returns the active profile name, or "" when none is
// selected
func (s *Service) CurrentProfile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetCurrentProfile switches the active namespace. The cache is cleared
// entirely; a non-empty profile is registered in the global profile
// registry and remembered for the next start.
func (s *Service) SetCurrentProfile(ctx context.Context, profile string) {
	s.mu.Lock()
	s.profile = profile
	s.cache = make(map[string]json.RawMessage)
	s.order = s.order[:0]
	s.mu.Unlock()

	if profile == "" {
		if err := s.backend.Delete(ctx, KeyCurrentProfile); err != nil {
			s.logger.Warn("failed_to_clear_current_profile", zap.Error(err))
		}
		return
	}

	raw, _ := json.Marshal(profile)
	if err := s.backend.Store(ctx, KeyCurrentProfile, raw); err != nil {
		s.logger.Warn("failed_to_persist_current_profile", zap.Error(err))
	}
	s.registerProfile(ctx, profile)
}

// AvailableProfiles returns the global profile registry
func (s *Service) AvailableProfiles(ctx context.Context) []string {
	raw, err := s.backend.Load(ctx, KeyUserProfiles)
	if err != nil {
		return nil
	}
	var profiles []string
	if err := json.Unmarshal(raw, &profiles); err != nil {
		s.logger.Warn("corrupt_profile_registry", zap.Error(err))
		return nil
	}
	return profiles
}

func (s *Service) registerProfile(ctx context.Context, profile string) {
	profiles := s.AvailableProfiles(ctx)
	for _, p := range profiles {
		if p == profile {
			return
		}
	}
	profiles = append(profiles, profile)
	raw, _ := json.Marshal(profiles)
	if err := s.backend.Store(ctx, KeyUserProfiles, raw); err != nil {
		s.logger.Warn("failed_to_register_profile", zap.Error(err))
	}
}

// prefixedKey returns the namespaced key, or "" when the key is
// profile-scoped and no profile is selected
func (s *Service) prefixedKey(key string) string {
	if globalKeys[key] {
		return key
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == "" {
		s.logger.Warn("no_profile_selected", zap.String("key", key))
		return ""
	}
	return s.profile + profileSeparator + key
}

// GetRaw returns the raw JSON for the current profile's key, or nil when
// absent, unparseable at the backend, or no profile is selected
func (s *Service) GetRaw(ctx context.Context, key string) json.RawMessage {
	prefixed := s.prefixedKey(key)
	if prefixed == "" {
		return nil
	}

	s.mu.Lock()
	if cached, ok := s.cache[prefixed]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	raw, err := s.backend.Load(ctx, prefixed)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("storage_read_failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	if !json.Valid(raw) {
		// Corrupt entries are treated as absent
		s.logger.Error("storage_corrupt_entry", zap.String("key", key))
		return nil
	}

	s.mu.Lock()
	s.updateCache(prefixed, raw)
	s.mu.Unlock()
	return raw
}

// Get decodes the value for key into out, reporting whether a value was
// found and decoded
func (s *Service) Get(ctx context.Context, key string, out any) bool {
	raw := s.GetRaw(ctx, key)
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error("storage_decode_failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set serializes and persists the value under the namespaced key. A failed
// write (quota, connectivity) returns false; in-memory state held by
// callers intentionally keeps the attempted change.
func (s *Service) Set(ctx context.Context, key string, value any) bool {
	prefixed := s.prefixedKey(key)
	if prefixed == "" {
		return false
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("storage_encode_failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := s.backend.Store(ctx, prefixed, raw); err != nil {
		s.logger.Error("storage_write_failed", zap.String("key", key), zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.updateCache(prefixed, raw)
	s.mu.Unlock()
	return true
}

// Remove deletes the namespaced key
func (s *Service) Remove(ctx context.Context, key string) {
	prefixed := s.prefixedKey(key)
	if prefixed == "" {
		return
	}

	s.mu.Lock()
	if _, ok := s.cache[prefixed]; ok {
		delete(s.cache, prefixed)
		for i, k := range s.order {
			if k == prefixed {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, prefixed); err != nil {
		s.logger.Error("storage_delete_failed", zap.String("key", key), zap.Error(err))
	}
}

// updateCache inserts or refreshes an entry, evicting the oldest-inserted
// entry once the capacity is reached. Caller holds s.mu.
func (s *Service) updateCache(key string, value json.RawMessage) {
	if _, ok := s.cache[key]; ok {
		// Re-insert at the back so overwrites count as recent
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else if len(s.cache) >= s.cacheSize {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cache, oldest)
	}
	s.cache[key] = value
	s.order = append(s.order, key)
}
