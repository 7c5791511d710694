package queue

import "context"

// JobQueue is the interface the server and worker share for reminder jobs
type JobQueue interface {
	// Enqueue adds a job, honoring its NotBefore delay when the broker
	// supports delayed delivery
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams messages until the context is cancelled. The caller
	// acknowledges each message; prefetch bounds unacknowledged messages
	// per consumer.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the connection is usable
	HealthCheck(ctx context.Context) error
}
