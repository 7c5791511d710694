// Package workers contains the reminder pipeline: a cron scan that turns
// scheduled tasks into queue jobs, and the processor that fires them.
package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// ReminderProcessor handles reminder jobs: it marks the task's reminder as
// sent and emits the notification record. Delivery itself is the
// notification channel's concern; the processor's log line is the contract.
type ReminderProcessor struct {
	storage *storage.Service
	logger  *zap.Logger
}

// NewReminderProcessor creates a processor over the shared storage backend
func NewReminderProcessor(svc *storage.Service, logger *zap.Logger) *ReminderProcessor {
	return &ReminderProcessor{storage: svc, logger: logger}
}

// ProcessReminderJob fires the reminder for the job's task. Tasks already
// completed, already notified, or deleted since scheduling are skipped.
func (p *ReminderProcessor) ProcessReminderJob(ctx context.Context, job *queue.Job) error {
	if job.Profile == "" || job.TaskID == "" {
		return fmt.Errorf("reminder job missing profile or task id")
	}

	view := p.storage.View(job.Profile)

	var tasks []*models.Task
	if !view.Get(ctx, storage.KeyTasksData, &tasks) {
		// Profile has no task data; nothing to remind
		return nil
	}

	var task *models.Task
	for _, t := range tasks {
		if t.ID == job.TaskID {
			task = t
			break
		}
	}
	if task == nil || task.Completed || task.ReminderSent {
		return nil
	}

	task.ReminderSent = true
	if !view.Set(ctx, storage.KeyTasksData, tasks) {
		return fmt.Errorf("failed to persist reminder state for task %s", job.TaskID)
	}

	p.logger.Info("reminder_fired",
		zap.String("profile", job.Profile),
		zap.String("task_id", task.ID),
		zap.String("title", task.Title),
		zap.String("start_time", task.StartTime),
		zap.Int("lead_minutes", task.Reminder),
	)
	return nil
}

// Run consumes reminder jobs until the context is cancelled. Failed jobs
// are retried up to their retry budget, then dead-lettered.
func (p *ReminderProcessor) Run(ctx context.Context, jobQueue queue.JobQueue, prefetch int) error {
	msgs, errs, err := jobQueue.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case consumeErr, ok := <-errs:
			if !ok {
				return nil
			}
			p.logger.Error("consume_error", zap.Error(consumeErr))
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			p.handle(ctx, msg, jobQueue)
		}
	}
}

func (p *ReminderProcessor) handle(ctx context.Context, msg *queue.Message, jobQueue queue.JobQueue) {
	job := msg.Job
	if err := p.ProcessReminderJob(ctx, job); err != nil {
		p.logger.Warn("reminder_job_failed",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if job.CanRetry() {
			job.IncrementRetry()
			retryAt := time.Now().Add(30 * time.Second)
			job.NotBefore = &retryAt
			if enqErr := jobQueue.Enqueue(ctx, job); enqErr != nil {
				p.logger.Error("reminder_retry_enqueue_failed", zap.Error(enqErr))
			}
			_ = msg.Ack()
			return
		}
		// Out of retries: dead-letter
		_ = msg.Nack(false)
		return
	}
	_ = msg.Ack()
}
