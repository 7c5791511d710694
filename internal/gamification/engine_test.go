package gamification

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, *events.Bus) {
	t.Helper()
	svc := storage.NewService(storage.NewMemoryBackend(), zap.NewNop())
	svc.SetCurrentProfile(context.Background(), "test")
	bus := events.NewBus()
	return NewEngine(svc, bus, zap.NewNop()), bus
}

// fixedClock returns a clock pinned to the given day that tests can advance
func fixedClock(start time.Time) (func() time.Time, func(days int)) {
	current := start
	return func() time.Time { return current }, func(days int) { current = current.AddDate(0, 0, days) }
}

func TestUpdateStreakDailyCap(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	now, _ := fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	engine.SetClock(now)
	ctx := context.Background()

	first := engine.UpdateStreak(ctx)
	if first.Current != 1 {
		t.Fatalf("Expected streak 1 after first update, got %d", first.Current)
	}

	// Further updates on the same day are no-ops
	second := engine.UpdateStreak(ctx)
	if second.Current != 1 {
		t.Errorf("Expected streak to stay at 1 on the same day, got %d", second.Current)
	}

	profile := engine.Profile(ctx)
	if profile.PS != StreakBonus {
		t.Errorf("Expected exactly one streak bonus (%d PS), got %d", StreakBonus, profile.PS)
	}
}

func TestUpdateStreakContinuityAndReset(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	now, advance := fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	engine.SetClock(now)
	ctx := context.Background()

	engine.UpdateStreak(ctx)
	advance(1)
	streak := engine.UpdateStreak(ctx)
	if streak.Current != 2 {
		t.Fatalf("Expected streak 2 after consecutive day, got %d", streak.Current)
	}

	// A gap of more than one day resets to 1; Longest is retained
	advance(3)
	streak = engine.UpdateStreak(ctx)
	if streak.Current != 1 {
		t.Errorf("Expected streak reset to 1 after gap, got %d", streak.Current)
	}
	if streak.Longest != 2 {
		t.Errorf("Expected longest 2 retained, got %d", streak.Longest)
	}
}

func TestStreakReadsZeroAfterGap(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	now, advance := fixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	engine.SetClock(now)
	ctx := context.Background()

	engine.UpdateStreak(ctx)
	advance(2)

	// Reading never mutates, but a stale streak shows as 0
	if got := engine.Streak(ctx).Current; got != 0 {
		t.Errorf("Expected stale streak to read 0, got %d", got)
	}
}

func TestMilestoneAwardedOnceEver(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	engine.SetClock(now)
	ctx := context.Background()

	climb := func(days int) {
		for i := 0; i < days; i++ {
			engine.UpdateStreak(ctx)
			advance(1)
		}
	}

	climb(7)
	achievements := engine.Achievements(ctx)
	if len(achievements) != 1 || achievements[0] != "streak-7" {
		t.Fatalf("Expected [streak-7], got %v", achievements)
	}
	psAfterFirst := engine.Profile(ctx).PS

	// Break the streak, climb back to 7: no second award
	advance(3)
	climb(7)
	achievements = engine.Achievements(ctx)
	if len(achievements) != 1 {
		t.Errorf("Expected milestone awarded once ever, got %v", achievements)
	}

	// Second climb grants only the 7 daily streak bonuses, no milestone
	// bonus, and stays below the next threshold
	wantPS := psAfterFirst + 7*StreakBonus
	profile := engine.Profile(ctx)
	if profile.PS != wantPS {
		t.Errorf("Expected %d PS after second climb, got %d", wantPS, profile.PS)
	}
}

func TestApplyPointsMultiLevel(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// 250 points from a fresh profile: 100 to reach level 2, 150 to reach
	// level 3, leaving 0 toward the 225 threshold
	engine.AwardPoints(ctx, 250)

	profile := engine.Profile(ctx)
	if profile.Level != 3 {
		t.Errorf("Expected level 3, got %d", profile.Level)
	}
	if profile.PS != 0 {
		t.Errorf("Expected 0 PS remaining, got %d", profile.PS)
	}
	if profile.NextLevelPS != 225 {
		t.Errorf("Expected next threshold 225, got %d", profile.NextLevelPS)
	}
}

func TestAwardPointsIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.AwardPoints(ctx, 0)
	engine.AwardPoints(ctx, -10)

	if ps := engine.Profile(ctx).PS; ps != 0 {
		t.Errorf("Expected 0 PS, got %d", ps)
	}
}

func TestBatchAppliesOnce(t *testing.T) {
	t.Parallel()

	engine, bus := newTestEngine(t)
	ctx := context.Background()

	var updates int
	bus.Subscribe(func(e events.Event) {
		if _, ok := e.(events.GamificationUpdate); ok {
			updates++
		}
	})

	engine.BeginBatch()
	engine.AwardPoints(ctx, 20)
	engine.AwardPoints(ctx, 25)

	if ps := engine.Profile(ctx).PS; ps != 0 {
		t.Errorf("Expected points deferred inside batch, got %d PS", ps)
	}

	engine.EndBatch(ctx)

	if ps := engine.Profile(ctx).PS; ps != 45 {
		t.Errorf("Expected 45 PS after batch, got %d", ps)
	}
	if updates != 1 {
		t.Errorf("Expected a single gamification update, got %d", updates)
	}
}

func TestBatchNesting(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.BeginBatch()
	engine.BeginBatch()
	engine.AwardPoints(ctx, 10)
	engine.EndBatch(ctx)

	// Inner close does not apply; the batch is still open
	if ps := engine.Profile(ctx).PS; ps != 0 {
		t.Errorf("Expected points still pending after inner close, got %d", ps)
	}

	engine.EndBatch(ctx)
	if ps := engine.Profile(ctx).PS; ps != 10 {
		t.Errorf("Expected 10 PS after outer close, got %d", ps)
	}
}

func TestAwardMedalIdempotent(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if !engine.AwardMedalForCategory(ctx, "fisica", "2026-03-10") {
		t.Fatal("Expected first medal award to succeed")
	}
	if engine.AwardMedalForCategory(ctx, "fisica", "2026-03-10") {
		t.Error("Expected repeat award for the same pair to be refused")
	}

	if ps := engine.Profile(ctx).PS; ps != MedalBonus {
		t.Errorf("Expected a single medal bonus (%d PS), got %d", MedalBonus, ps)
	}

	// A different date is a fresh pair
	if !engine.AwardMedalForCategory(ctx, "fisica", "2026-03-11") {
		t.Error("Expected award for a new date to succeed")
	}

	medals := engine.Medals(ctx)
	if !medals.Has("2026-03-10", "fisica") || !medals.Has("2026-03-11", "fisica") {
		t.Errorf("Expected both medals recorded, got %v", medals)
	}
}

func TestMilestoneTable(t *testing.T) {
	t.Parallel()

	if m := models.MilestoneForDays(7); m == nil || m.Bonus != 100 {
		t.Errorf("Expected 7-day milestone with bonus 100, got %+v", m)
	}
	if m := models.MilestoneForDays(8); m != nil {
		t.Errorf("Expected no milestone for 8 days, got %+v", m)
	}
}

func TestConcurrentBatchScopesPreservePoints(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// Handlers share one engine, so batch scopes from parallel requests
	// interleave; the accounting must not lose or double-apply points
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.BeginBatch()
			engine.AwardPoints(ctx, 10)
			engine.EndBatch(ctx)
		}()
	}
	wg.Wait()

	profile := engine.Profile(ctx)
	if profile.Level != 1 {
		t.Fatalf("Expected level 1, got %d", profile.Level)
	}
	if profile.PS != 80 {
		t.Errorf("Expected 80 points after 8 concurrent scopes, got %d", profile.PS)
	}

	engine.mu.Lock()
	depth, pending := engine.batchDepth, engine.pending
	engine.mu.Unlock()
	if depth != 0 || pending != 0 {
		t.Errorf("Expected batch accounting drained, got depth %d and pending %d", depth, pending)
	}
}
