package storage

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// View is a direct, uncached window into one profile's namespace. The
// reminder worker uses views to touch many profiles without disturbing the
// service's current-profile selection or its cache.
type View struct {
	backend Backend
	profile string
	logger  *zap.Logger
}

// View returns a window into the given profile's namespace
func (s *Service) View(profile string) *View {
	return &View{backend: s.backend, profile: profile, logger: s.logger}
}

// Get decodes the profile's value for key into out
func (v *View) Get(ctx context.Context, key string, out any) bool {
	raw, err := v.backend.Load(ctx, v.profile+profileSeparator+key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			v.logger.Error("storage_read_failed",
				zap.String("profile", v.profile),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		v.logger.Error("storage_decode_failed",
			zap.String("profile", v.profile),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Set persists the profile's value for key
func (v *View) Set(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		v.logger.Error("storage_encode_failed",
			zap.String("profile", v.profile),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	if err := v.backend.Store(ctx, v.profile+profileSeparator+key, raw); err != nil {
		v.logger.Error("storage_write_failed",
			zap.String("profile", v.profile),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}
