package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Enqueuer accepts tasks for eventual execution. Fire and forget:
// enqueue failures surface as errors, execution failures go through
// the retry policy.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...*Task) error
}

// Repository defines the interface for durable task persistence
type Repository interface {
	// Save persists one or more tasks
	Save(ctx context.Context, tasks ...*Task) error
	// FindDue retrieves pending tasks whose run time has arrived
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Task, error)
	// FindRetryable retrieves failed tasks due for another attempt
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*Task, error)
	// FindByID retrieves a single task by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// FindDead retrieves dead tasks with pagination
	FindDead(ctx context.Context, page, pageSize int) ([]*Task, int64, error)
	// MarkProcessing atomically claims tasks for a worker and returns
	// the ones actually claimed
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*Task, error)
	// Update updates an existing task
	Update(ctx context.Context, t *Task) error
	// DeleteOlderThan deletes terminal tasks older than the given time
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns task counts per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
