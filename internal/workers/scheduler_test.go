package workers

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// fakeQueue records enqueued jobs
type fakeQueue struct {
	jobs []*queue.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job *queue.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (f *fakeQueue) Close() error                      { return nil }
func (f *fakeQueue) HealthCheck(context.Context) error { return nil }

func newTestScheduler(t *testing.T, now time.Time) (*ReminderScheduler, *storage.Service, *fakeQueue) {
	t.Helper()

	svc := storage.NewService(storage.NewMemoryBackend(), zap.NewNop())
	svc.SetCurrentProfile(context.Background(), "maria")

	fq := &fakeQueue{}
	sched := NewReminderScheduler(svc, fq, zap.NewNop())
	sched.now = func() time.Time { return now }
	return sched, svc, fq
}

func TestScanEnqueuesDueReminder(t *testing.T) {
	t.Parallel()

	// 07:45 local; a 08:00 task with a 15-minute lead fires right now
	now := time.Date(2026, 3, 10, 7, 45, 0, 0, time.Local)
	sched, svc, fq := newTestScheduler(t, now)
	ctx := context.Background()

	seedProfileTasks(t, svc, "maria", []*models.Task{
		{ID: "t1", Title: "correr", DueDate: "2026-03-10", StartTime: "08:00", Reminder: 15},
	})

	sched.Scan(ctx)

	if len(fq.jobs) != 1 {
		t.Fatalf("Expected 1 job enqueued, got %d", len(fq.jobs))
	}
	job := fq.jobs[0]
	if job.TaskID != "t1" || job.Profile != "maria" {
		t.Errorf("Expected job for maria/t1, got %s/%s", job.Profile, job.TaskID)
	}
	if job.NotBefore == nil || !job.NotBefore.Equal(now) {
		t.Errorf("Expected NotBefore at the fire time %v, got %v", now, job.NotBefore)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected one-hour expiry, got %v", job.NotAfter)
	}
}

func TestScanWindowExcludes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 7, 45, 0, 0, time.Local)

	tests := []struct {
		name string
		task *models.Task
	}{
		{
			// Fires at 08:00 - 15min = 07:45 tomorrow
			name: "wrong day",
			task: &models.Task{ID: "t1", DueDate: "2026-03-11", StartTime: "08:00", Reminder: 15},
		},
		{
			// Fires at 07:44, already past
			name: "already past",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", StartTime: "07:59", Reminder: 15},
		},
		{
			// Fires at 07:46:00 + window boundary: 08:05 - 15 = 07:50
			name: "beyond the window",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", StartTime: "08:05", Reminder: 15},
		},
		{
			name: "no reminder configured",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", StartTime: "07:45", Reminder: 0},
		},
		{
			name: "completed",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", StartTime: "08:00", Reminder: 15, Completed: true},
		},
		{
			name: "already sent",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", StartTime: "08:00", Reminder: 15, ReminderSent: true},
		},
		{
			name: "all-day task",
			task: &models.Task{ID: "t1", DueDate: "2026-03-10", Reminder: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sched, svc, fq := newTestScheduler(t, now)
			seedProfileTasks(t, svc, "maria", []*models.Task{tt.task})

			sched.Scan(context.Background())
			if len(fq.jobs) != 0 {
				t.Errorf("Expected no jobs enqueued, got %d", len(fq.jobs))
			}
		})
	}
}

func TestScanCoversAllProfiles(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 7, 45, 0, 0, time.Local)
	sched, svc, fq := newTestScheduler(t, now)
	ctx := context.Background()

	svc.SetCurrentProfile(ctx, "joao")

	task := func() []*models.Task {
		return []*models.Task{{ID: "t1", DueDate: "2026-03-10", StartTime: "08:00", Reminder: 15}}
	}
	seedProfileTasks(t, svc, "maria", task())
	seedProfileTasks(t, svc, "joao", task())

	sched.Scan(ctx)
	if len(fq.jobs) != 2 {
		t.Errorf("Expected one job per profile, got %d", len(fq.jobs))
	}
}
