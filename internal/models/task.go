package models

// Priority represents how important a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Points returns the gamification points granted for completing a task
// with this priority
func (p Priority) Points() int {
	if p == PriorityHigh {
		return 20
	}
	return 10
}

// Valid reports whether p is one of the known priority values
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Category is a life-area task category. The empty string means
// "uncategorized" (an inbox task)
type Category string

const (
	CategoryFisica       Category = "Física"
	CategoryMental       Category = "Mental"
	CategoryFinanceira   Category = "Financeira"
	CategoryFamiliar     Category = "Familiar"
	CategoryProfissional Category = "Profissional"
	CategorySocial       Category = "Social"
	CategoryEspiritual   Category = "Espiritual"
	CategoryPreventiva   Category = "Preventiva"
	CategoryPessoal      Category = "Pessoal"
)

// DefaultCategories is the seed list for a fresh profile. Users can extend
// it with their own category names.
func DefaultCategories() []string {
	return []string{
		string(CategoryFisica),
		string(CategoryMental),
		string(CategoryFinanceira),
		string(CategoryFamiliar),
		string(CategoryProfissional),
		string(CategorySocial),
		string(CategoryEspiritual),
	}
}

// Task represents a single habit task
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Completed    bool     `json:"completed"`
	Category     string   `json:"category"`
	Priority     Priority `json:"priority"`
	DueDate      string   `json:"dueDate"`             // YYYY-MM-DD, empty = inbox task
	StartTime    string   `json:"startTime,omitempty"` // HH:MM, empty = all-day
	EndTime      string   `json:"endTime,omitempty"`   // HH:MM
	Reminder     int      `json:"reminder,omitempty"`  // minutes before StartTime, 0 = no reminder
	ReminderSent bool     `json:"reminderSent,omitempty"`
}

// TaskPatch carries optional field updates for a task. Nil fields are left
// untouched by the merge.
type TaskPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Completed    *bool     `json:"completed,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	DueDate      *string   `json:"dueDate,omitempty"`
	StartTime    *string   `json:"startTime,omitempty"`
	EndTime      *string   `json:"endTime,omitempty"`
	Reminder     *int      `json:"reminder,omitempty"`
	ReminderSent *bool     `json:"reminderSent,omitempty"`
}

// Apply merges the non-nil patch fields into the task
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Reminder != nil {
		t.Reminder = *p.Reminder
	}
	if p.ReminderSent != nil {
		t.ReminderSent = *p.ReminderSent
	}
}
