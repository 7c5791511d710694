package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminder fires a notification for a scheduled task
	JobTypeReminder JobType = "task_reminder"
)

// Job is one unit of work for the reminder worker
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	Profile    string     `json:"profile"`
	TaskID     string     `json:"task_id"`
	NotBefore  *time.Time `json:"not_before,omitempty"` // earliest processing time, nil = immediate
	NotAfter   *time.Time `json:"not_after,omitempty"`  // expiry, nil = never
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewReminderJob creates a reminder job for a profile's task
func NewReminderJob(profile, taskID string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeReminder,
		Profile:    profile,
		TaskID:     taskID,
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// ShouldProcess reports whether the job's time window is open
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired reports whether the job passed its NotAfter deadline
func (j *Job) IsExpired() bool {
	return j.NotAfter != nil && time.Now().After(*j.NotAfter)
}

// CanRetry reports whether another attempt is allowed
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry counts a failed attempt
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
