package queue

import (
	"testing"
	"time"
)

func TestNewReminderJobDefaults(t *testing.T) {
	t.Parallel()

	job := NewReminderJob("maria", "task-1")
	if job.Type != JobTypeReminder {
		t.Errorf("Expected type %q, got %q", JobTypeReminder, job.Type)
	}
	if job.Profile != "maria" || job.TaskID != "task-1" {
		t.Errorf("Expected profile/task carried, got %q/%q", job.Profile, job.TaskID)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected 3 max retries, got %d", job.MaxRetries)
	}
	if !job.ShouldProcess() {
		t.Error("Expected a job without a window to be processable immediately")
	}
}

func TestJobTimeWindow(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name          string
		notBefore     *time.Time
		notAfter      *time.Time
		shouldProcess bool
		expired       bool
	}{
		{name: "open window", notBefore: &past, notAfter: &future, shouldProcess: true},
		{name: "not yet due", notBefore: &future, shouldProcess: false},
		{name: "expired", notAfter: &past, shouldProcess: false, expired: true},
		{name: "no bounds", shouldProcess: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewReminderJob("p", "t")
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.shouldProcess {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.shouldProcess)
			}
			if got := job.IsExpired(); got != tt.expired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestJobRetryBudget(t *testing.T) {
	t.Parallel()

	job := NewReminderJob("p", "t")
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("Expected retry budget exhausted")
	}
}
