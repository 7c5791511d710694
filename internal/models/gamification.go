package models

// Streak tracks consecutive calendar days with at least one qualifying
// task completion
type Streak struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastUpdate string `json:"lastUpdate"` // YYYY-MM-DD, empty = never
}

// Profile is the gamification profile: level and point progression
type Profile struct {
	Level       int `json:"level"`
	PS          int `json:"ps"` // points toward the next level
	NextLevelPS int `json:"nextLevelPs"`
}

// NewProfile returns a fresh level-1 profile
func NewProfile() Profile {
	return Profile{Level: 1, PS: 0, NextLevelPS: 100}
}

// DailyMedals maps a date (YYYY-MM-DD) to the category keys whose due tasks
// were all completed on that date
type DailyMedals map[string][]string

// Has reports whether the medal for (date, category) was already awarded
func (m DailyMedals) Has(date, category string) bool {
	for _, c := range m[date] {
		if c == category {
			return true
		}
	}
	return false
}

// Milestone is a fixed streak-length threshold granting a one-time bonus
type Milestone struct {
	Days        int    `json:"days"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Bonus       int    `json:"bonus"`
}

// StreakMilestones is the fixed milestone table, ordered by threshold
var StreakMilestones = []Milestone{
	{Days: 7, Name: "Uma Semana Firme", Description: "7 dias seguidos de pequenos passos.", Icon: "fa-seedling", Color: "#4caf50", Bonus: 100},
	{Days: 14, Name: "Duas Semanas", Description: "14 dias consecutivos de atividade.", Icon: "fa-leaf", Color: "#8bc34a", Bonus: 200},
	{Days: 30, Name: "Um Mês de Hábitos", Description: "30 dias sem quebrar a corrente.", Icon: "fa-tree", Color: "#2196f3", Bonus: 500},
	{Days: 90, Name: "Um Trimestre", Description: "90 dias de constância.", Icon: "fa-mountain", Color: "#9c27b0", Bonus: 1000},
	{Days: 365, Name: "Um Ano Inteiro", Description: "365 dias de dedicação.", Icon: "fa-trophy", Color: "#ff9800", Bonus: 2500},
}

// MilestoneForDays returns the milestone matching exactly the given streak
// length, or nil if the length is not a threshold
func MilestoneForDays(days int) *Milestone {
	for i := range StreakMilestones {
		if StreakMilestones[i].Days == days {
			return &StreakMilestones[i]
		}
	}
	return nil
}
