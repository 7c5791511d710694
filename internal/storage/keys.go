package storage

// Logical storage keys. Profile-scoped keys are prefixed by the Service;
// the global keys below are stored as-is.
const (
	// Global keys (not profile-scoped)
	KeyUserProfiles   = "userProfiles"
	KeyCurrentProfile = "currentProfile"
	KeyTheme          = "theme"

	// Profile-scoped keys
	KeyTasksData       = "unifiedTasksData"
	KeyTasksCategories = "tasksCategories"
	KeyReflections     = "unifiedReflections"
	KeyDailyMedals     = "dailyMedals"
	KeyActivityStreak  = "activityStreak"
	KeyGamification    = "gamificationProfile"
	KeyAchievements    = "userAchievements"
	KeyUIStatePrefix   = "uiState-" // per-page expand/collapse flags
)

// globalKeys bypass profile prefixing
var globalKeys = map[string]bool{
	KeyTheme: true,
}
