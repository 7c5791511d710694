package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// scanWindow is how far ahead one scan looks for reminders to enqueue; it
// matches the scan cadence so each fire time is picked up exactly once
const scanWindow = time.Minute

// ReminderScheduler scans every profile's tasks each minute and enqueues a
// delayed reminder job for each reminder whose fire time falls inside the
// next scan window
type ReminderScheduler struct {
	storage  *storage.Service
	jobQueue queue.JobQueue
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewReminderScheduler creates the scheduler; call Start to begin scanning
func NewReminderScheduler(svc *storage.Service, jobQueue queue.JobQueue, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		storage:  svc,
		jobQueue: jobQueue,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start schedules the per-minute scan and runs it until ctx is cancelled
func (s *ReminderScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.Scan(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// Scan walks all registered profiles once, enqueueing due reminder jobs
func (s *ReminderScheduler) Scan(ctx context.Context) {
	for _, profile := range s.storage.AvailableProfiles(ctx) {
		s.scanProfile(ctx, profile)
	}
}

func (s *ReminderScheduler) scanProfile(ctx context.Context, profile string) {
	view := s.storage.View(profile)

	var tasks []*models.Task
	if !view.Get(ctx, storage.KeyTasksData, &tasks) {
		return
	}

	now := s.now()
	today := now.Format("2006-01-02")

	for _, task := range tasks {
		if task.Completed || task.ReminderSent || task.Reminder <= 0 {
			continue
		}
		if task.DueDate != today || task.StartTime == "" {
			continue
		}

		fireAt, ok := reminderFireTime(task, now.Location())
		if !ok {
			continue
		}
		// Enqueue only when the fire time falls inside this scan's window,
		// so consecutive scans never double-enqueue the same reminder
		if fireAt.Before(now) || !fireAt.Before(now.Add(scanWindow)) {
			continue
		}

		job := queue.NewReminderJob(profile, task.ID)
		job.NotBefore = &fireAt
		expiry := fireAt.Add(time.Hour)
		job.NotAfter = &expiry

		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Error("failed_to_enqueue_reminder",
				zap.String("profile", profile),
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("reminder_scheduled",
			zap.String("profile", profile),
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt),
		)
	}
}

// reminderFireTime computes start time minus the lead, in local time
func reminderFireTime(task *models.Task, loc *time.Location) (time.Time, bool) {
	start, err := time.ParseInLocation("2006-01-02 15:04", task.DueDate+" "+task.StartTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return start.Add(-time.Duration(task.Reminder) * time.Minute), true
}
