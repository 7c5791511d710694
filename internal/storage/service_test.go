package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	svc := NewService(backend, zap.NewNop())
	return svc, backend
}

func TestServiceProfilePrefixing(t *testing.T) {
	t.Parallel()

	svc, backend := newTestService(t)
	ctx := context.Background()
	svc.SetCurrentProfile(ctx, "maria")

	if !svc.Set(ctx, KeyTasksCategories, []string{"Física"}) {
		t.Fatal("Expected Set to succeed")
	}

	raw, err := backend.Load(ctx, "maria__"+KeyTasksCategories)
	if err != nil {
		t.Fatalf("Expected value under prefixed key, got error: %v", err)
	}
	var got []string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Failed to decode stored value: %v", err)
	}
	if len(got) != 1 || got[0] != "Física" {
		t.Errorf("Expected [Física], got %v", got)
	}
}

func TestServiceNoProfileSelected(t *testing.T) {
	t.Parallel()

	svc, backend := newTestService(t)
	ctx := context.Background()

	if svc.Set(ctx, KeyTasksData, []string{"x"}) {
		t.Error("Expected Set to fail with no profile selected")
	}
	var out []string
	if svc.Get(ctx, KeyTasksData, &out) {
		t.Error("Expected Get to fail with no profile selected")
	}

	// Global keys work without a profile
	if !svc.Set(ctx, KeyTheme, "dark") {
		t.Error("Expected global key Set to succeed without a profile")
	}
	if _, err := backend.Load(ctx, KeyTheme); err != nil {
		t.Errorf("Expected theme stored unprefixed, got error: %v", err)
	}
}

func TestServiceProfileIsolation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.SetCurrentProfile(ctx, "maria")
	svc.Set(ctx, KeyActivityStreak, map[string]int{"current": 5})

	svc.SetCurrentProfile(ctx, "joao")
	var streak map[string]int
	if svc.Get(ctx, KeyActivityStreak, &streak) {
		t.Errorf("Expected joao's namespace to be empty, got %v", streak)
	}

	svc.SetCurrentProfile(ctx, "maria")
	if !svc.Get(ctx, KeyActivityStreak, &streak) {
		t.Fatal("Expected maria's streak to survive the switch")
	}
	if streak["current"] != 5 {
		t.Errorf("Expected current 5, got %d", streak["current"])
	}
}

func TestServiceSwitchPersistsSelection(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	svc := NewService(backend, zap.NewNop())
	ctx := context.Background()

	svc.SetCurrentProfile(ctx, "maria")

	// A fresh service over the same backend restores the selection
	restored := NewService(backend, zap.NewNop())
	if got := restored.CurrentProfile(); got != "maria" {
		t.Errorf("Expected restored profile maria, got %q", got)
	}
}

func TestServiceRegistersProfiles(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.SetCurrentProfile(ctx, "maria")
	svc.SetCurrentProfile(ctx, "joao")
	svc.SetCurrentProfile(ctx, "maria") // no duplicate

	profiles := svc.AvailableProfiles(ctx)
	if len(profiles) != 2 {
		t.Fatalf("Expected 2 profiles, got %d: %v", len(profiles), profiles)
	}
}

func TestServiceCacheEviction(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.SetCurrentProfile(ctx, "maria")

	// Fill the cache past capacity
	for i := 0; i < DefaultCacheSize+10; i++ {
		svc.Set(ctx, fmt.Sprintf("key-%d", i), i)
	}

	svc.mu.Lock()
	size := len(svc.cache)
	svc.mu.Unlock()
	if size != DefaultCacheSize {
		t.Errorf("Expected cache bounded at %d entries, got %d", DefaultCacheSize, size)
	}

	// Evicted entries still read through from the backend
	var v int
	if !svc.Get(ctx, "key-0", &v) {
		t.Fatal("Expected evicted key to load from backend")
	}
	if v != 0 {
		t.Errorf("Expected 0, got %d", v)
	}
}

func TestServiceFailedWriteReturnsFalse(t *testing.T) {
	t.Parallel()

	svc, backend := newTestService(t)
	ctx := context.Background()
	svc.SetCurrentProfile(ctx, "maria")

	backend.FailWrites = true
	if svc.Set(ctx, KeyTasksData, []string{"task"}) {
		t.Error("Expected Set to report the failed write")
	}

	// The failed value must not be served from cache afterwards
	var out []string
	if svc.Get(ctx, KeyTasksData, &out) {
		t.Errorf("Expected no stored value after failed write, got %v", out)
	}
}

func TestServiceCorruptEntryTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	svc, backend := newTestService(t)
	ctx := context.Background()
	svc.SetCurrentProfile(ctx, "maria")

	if err := backend.Store(ctx, "maria__"+KeyTasksData, []byte("{not json")); err != nil {
		t.Fatalf("Failed to plant corrupt entry: %v", err)
	}

	if raw := svc.GetRaw(ctx, KeyTasksData); raw != nil {
		t.Errorf("Expected corrupt entry to read as absent, got %s", raw)
	}
}

func TestViewDoesNotDisturbSelection(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.SetCurrentProfile(ctx, "maria")

	view := svc.View("joao")
	if !view.Set(ctx, KeyTasksData, []string{"t1"}) {
		t.Fatal("Expected view Set to succeed")
	}

	if got := svc.CurrentProfile(); got != "maria" {
		t.Errorf("Expected current profile unchanged, got %q", got)
	}

	var tasks []string
	if svc.Get(ctx, KeyTasksData, &tasks) {
		t.Errorf("Expected maria's namespace untouched by the view, got %v", tasks)
	}
	if !view.Get(ctx, KeyTasksData, &tasks) || len(tasks) != 1 {
		t.Errorf("Expected view to read back its own write, got %v", tasks)
	}
}
