// Package gamification implements the streak, points, medal and milestone
// engine. All state lives in the profile's storage namespace; every
// operation is a silent no-op while no profile is active.
package gamification

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
)

const (
	// StreakBonus is awarded on every true streak transition
	StreakBonus = 25
	// MedalBonus is awarded on the first medal for a (date, category) pair
	MedalBonus = 50

	dateLayout = "2006-01-02"
)

// Engine drives streaks, points, medals and milestone achievements. One
// instance is shared by every request handler; mu serializes the
// read-modify-write cycles through storage and the batch accounting.
// Locked helpers queue events instead of publishing, so broadcasts always
// happen after the lock is released.
type Engine struct {
	storage *storage.Service
	bus     *events.Bus
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex
	// batch state: while a batch is open, point awards accumulate and the
	// level-up check runs once on EndBatch
	batchDepth int
	pending    int
}

// NewEngine creates an engine over the given storage service and event bus
func NewEngine(svc *storage.Service, bus *events.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		storage: svc,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the engine's notion of "now". Used by tests and by
// the planner's date-shifted rendering.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

func (e *Engine) today() string {
	return e.now().Format(dateLayout)
}

func (e *Engine) yesterday() string {
	return e.now().AddDate(0, 0, -1).Format(dateLayout)
}

func (e *Engine) publish(queued []events.Event) {
	for _, ev := range queued {
		e.bus.Publish(ev)
	}
}

// Streak returns the current streak, evaluated against today: a streak
// whose last update is neither today nor yesterday reads as 0
func (e *Engine) Streak(ctx context.Context) models.Streak {
	e.mu.Lock()
	defer e.mu.Unlock()

	var streak models.Streak
	e.storage.Get(ctx, storage.KeyActivityStreak, &streak)

	if streak.LastUpdate != e.today() && streak.LastUpdate != e.yesterday() {
		streak.Current = 0
	}
	return streak
}

// UpdateStreak registers a qualifying action for today. At most one
// increment happens per calendar day; a gap longer than one day resets the
// count to 1. Each true transition awards the streak bonus and checks the
// milestone table.
func (e *Engine) UpdateStreak(ctx context.Context) models.Streak {
	e.mu.Lock()
	streak, queued := e.updateStreakLocked(ctx)
	e.mu.Unlock()

	e.publish(queued)
	return streak
}

func (e *Engine) updateStreakLocked(ctx context.Context) (models.Streak, []events.Event) {
	today := e.today()

	var streak models.Streak
	e.storage.Get(ctx, storage.KeyActivityStreak, &streak)

	if streak.LastUpdate == today {
		// Already counted today
		return streak, nil
	}

	if streak.LastUpdate == e.yesterday() {
		streak.Current++
	} else {
		streak.Current = 1
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastUpdate = today

	e.storage.Set(ctx, storage.KeyActivityStreak, streak)
	e.logger.Info("streak_updated",
		zap.Int("current", streak.Current),
		zap.Int("longest", streak.Longest),
	)

	queued := e.awardPointsLocked(ctx, StreakBonus)
	queued = append(queued, e.checkMilestoneLocked(ctx, streak.Current)...)
	return streak, queued
}

// checkMilestoneLocked awards the milestone matching the new streak
// length, once ever per threshold. The achievement id is "streak-N"; once
// recorded it is never re-awarded, even if the streak resets and climbs
// back.
func (e *Engine) checkMilestoneLocked(ctx context.Context, days int) []events.Event {
	milestone := models.MilestoneForDays(days)
	if milestone == nil {
		return nil
	}

	id := milestoneAchievementID(days)
	achievements := e.achievementsLocked(ctx)
	for _, a := range achievements {
		if a == id {
			return nil
		}
	}

	achievements = append(achievements, id)
	e.storage.Set(ctx, storage.KeyAchievements, achievements)
	queued := e.awardPointsLocked(ctx, milestone.Bonus)

	e.logger.Info("milestone_unlocked",
		zap.String("achievement", id),
		zap.String("name", milestone.Name),
		zap.Int("bonus", milestone.Bonus),
	)
	return queued
}

// Achievements returns the permanently recorded achievement ids
func (e *Engine) Achievements(ctx context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.achievementsLocked(ctx)
}

func (e *Engine) achievementsLocked(ctx context.Context) []string {
	var achievements []string
	e.storage.Get(ctx, storage.KeyAchievements, &achievements)
	return achievements
}

// Profile returns the gamification profile, defaulting to a fresh level-1
// profile when none is stored yet
func (e *Engine) Profile(ctx context.Context) models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profileLocked(ctx)
}

func (e *Engine) profileLocked(ctx context.Context) models.Profile {
	profile := models.NewProfile()
	e.storage.Get(ctx, storage.KeyGamification, &profile)
	return profile
}

// BeginBatch opens a point-award batch: subsequent AwardPoints calls
// accumulate and the level-up check plus the update broadcast happen once,
// on the matching EndBatch. Batches nest.
func (e *Engine) BeginBatch() {
	e.mu.Lock()
	e.batchDepth++
	e.mu.Unlock()
}

// EndBatch closes the innermost batch and, when the outermost batch closes,
// applies the accumulated points
func (e *Engine) EndBatch(ctx context.Context) {
	e.mu.Lock()
	if e.batchDepth == 0 {
		e.mu.Unlock()
		return
	}
	e.batchDepth--
	if e.batchDepth > 0 {
		e.mu.Unlock()
		return
	}
	points := e.pending
	e.pending = 0

	var queued []events.Event
	if points > 0 {
		queued = append(queued, e.applyPointsLocked(ctx, points))
	}
	e.mu.Unlock()

	e.publish(queued)
}

// AwardPoints grants points to the active profile. Inside a batch the
// amount accumulates; outside, it applies immediately.
func (e *Engine) AwardPoints(ctx context.Context, points int) {
	e.mu.Lock()
	queued := e.awardPointsLocked(ctx, points)
	e.mu.Unlock()

	e.publish(queued)
}

func (e *Engine) awardPointsLocked(ctx context.Context, points int) []events.Event {
	if points <= 0 {
		return nil
	}
	if e.batchDepth > 0 {
		e.pending += points
		return nil
	}
	return []events.Event{e.applyPointsLocked(ctx, points)}
}

// applyPointsLocked adds points and runs the level-up loop: a single large
// award can cross several thresholds, each growing the next threshold by
// half. It returns the update event for the caller to publish after
// unlocking.
func (e *Engine) applyPointsLocked(ctx context.Context, points int) events.Event {
	profile := e.profileLocked(ctx)
	profile.PS += points

	leveled := false
	for profile.PS >= profile.NextLevelPS {
		profile.PS -= profile.NextLevelPS
		profile.Level++
		profile.NextLevelPS = profile.NextLevelPS * 3 / 2
		leveled = true
	}

	if !e.storage.Set(ctx, storage.KeyGamification, profile) {
		// Failed writes leave the persisted profile behind; the next
		// successful write reconverges
		e.logger.Warn("gamification_persist_failed", zap.Int("points", points))
	}

	if leveled {
		e.logger.Info("level_up",
			zap.Int("level", profile.Level),
			zap.Int("next_level_ps", profile.NextLevelPS),
		)
	}

	return events.GamificationUpdate{Level: profile.Level, Points: points}
}

// Medals returns the date → completed-category map
func (e *Engine) Medals(ctx context.Context) models.DailyMedals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.medalsLocked(ctx)
}

func (e *Engine) medalsLocked(ctx context.Context) models.DailyMedals {
	medals := models.DailyMedals{}
	e.storage.Get(ctx, storage.KeyDailyMedals, &medals)
	return medals
}

// AwardMedalForCategory records the medal for (date, category) and grants
// the medal bonus. Awarding is idempotent per pair; only the first call
// awards points and broadcasts the change.
func (e *Engine) AwardMedalForCategory(ctx context.Context, categoryKey, date string) bool {
	e.mu.Lock()
	medals := e.medalsLocked(ctx)
	if medals.Has(date, categoryKey) {
		e.mu.Unlock()
		return false
	}

	medals[date] = append(medals[date], categoryKey)
	e.storage.Set(ctx, storage.KeyDailyMedals, medals)
	queued := e.awardPointsLocked(ctx, MedalBonus)
	e.mu.Unlock()

	e.logger.Info("medal_awarded",
		zap.String("category", categoryKey),
		zap.String("date", date),
	)

	e.publish(append(queued, events.TasksChanged{}))
	return true
}

func milestoneAchievementID(days int) string {
	return "streak-" + strconv.Itoa(days)
}
