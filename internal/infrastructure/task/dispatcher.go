package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/telemetry"
)

// Handler executes one kind of task. A returned error counts as a
// failed attempt and goes through the retry policy.
type Handler func(ctx context.Context, t *task.Task) error

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	Workers          int
	BatchSize        int
	PollInterval     time.Duration
	TaskTimeout      time.Duration
	RetryPolicy      task.RetryPolicy
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
	// DependencyDelay is how far a task is pushed back when its
	// dependency has not reached a terminal outcome yet.
	DependencyDelay time.Duration
	// Metrics records task executions when set
	Metrics *telemetry.PipelineMetrics
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:          4,
		BatchSize:        50,
		PollInterval:     2 * time.Second,
		TaskTimeout:      60 * time.Second,
		RetryPolicy:      task.DefaultRetryPolicy(),
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
		DependencyDelay:  5 * time.Second,
	}
}

// Dispatcher runs durable tasks on a bounded worker pool over the
// task store. Claims are atomic, so competing instances process
// disjoint sets; retries are serialized per task by the single-claim
// semantics.
type Dispatcher struct {
	repo     task.Repository
	handlers map[task.Kind]Handler
	config   DispatcherConfig
	logger   *zap.Logger

	taskCh chan *task.Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Handlers are registered before Start.
func NewDispatcher(repo task.Repository, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.BatchSize < 1 {
		config.BatchSize = DefaultDispatcherConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultDispatcherConfig().PollInterval
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = DefaultDispatcherConfig().TaskTimeout
	}
	if config.DependencyDelay <= 0 {
		config.DependencyDelay = DefaultDispatcherConfig().DependencyDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		repo:     repo,
		handlers: make(map[task.Kind]Handler),
		config:   config,
		logger:   logger,
		taskCh:   make(chan *task.Task, config.BatchSize),
	}
}

// Register binds a handler to a task kind
func (d *Dispatcher) Register(kind task.Kind, handler Handler) {
	d.handlers[kind] = handler
}

// Start starts the poll loop and worker pool
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(ctx)
	}

	d.wg.Add(1)
	go d.pollLoop(ctx)

	if d.config.CleanupEnabled {
		d.wg.Add(1)
		go d.cleanupLoop(ctx)
	}

	d.logger.Info("task dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the dispatcher
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("task dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) pollLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollBatch(ctx)
		}
	}
}

// pollBatch claims due and retryable tasks and feeds them to workers
func (d *Dispatcher) pollBatch(ctx context.Context) {
	due, err := d.repo.FindDue(ctx, time.Now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find due tasks", zap.Error(err))
		return
	}
	d.claimAndQueue(ctx, due)

	retryable, err := d.repo.FindRetryable(ctx, time.Now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find retryable tasks", zap.Error(err))
		return
	}
	d.claimAndQueue(ctx, retryable)
}

func (d *Dispatcher) claimAndQueue(ctx context.Context, tasks []*task.Task) {
	if len(tasks) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	claimed, err := d.repo.MarkProcessing(ctx, ids)
	if err != nil {
		d.logger.Error("failed to claim tasks", zap.Error(err))
		return
	}

	for _, t := range claimed {
		select {
		case d.taskCh <- t:
		case <-ctx.Done():
			// Release unstarted work so another poll picks it up
			t.Reschedule(0)
			if err := d.repo.Update(context.WithoutCancel(ctx), t); err != nil {
				d.logger.Error("failed to release task", zap.String("task_id", t.ID.String()), zap.Error(err))
			}
			return
		}
	}
}

func (d *Dispatcher) workerLoop(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.taskCh:
			d.execute(ctx, t)
		}
	}
}

// execute runs one claimed task through its handler
func (d *Dispatcher) execute(ctx context.Context, t *task.Task) {
	if !d.dependencySatisfied(ctx, t) {
		return
	}

	handler, ok := d.handlers[t.Kind]
	if !ok {
		d.fail(ctx, t, fmt.Sprintf("no handler registered for kind %s", t.Kind))
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, d.config.TaskTimeout)
	started := time.Now()
	err := handler(taskCtx, t)
	cancel()

	if err != nil {
		d.fail(ctx, t, err.Error())
		d.recordTask(ctx, t, started)
		return
	}

	t.MarkSucceeded()
	d.recordTask(ctx, t, started)
	if err := d.repo.Update(ctx, t); err != nil {
		d.logger.Error("failed to mark task succeeded",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
		return
	}

	d.logger.Debug("task completed",
		zap.String("task_id", t.ID.String()),
		zap.String("kind", t.Kind.String()))
}

// dependencySatisfied gates execution on the dependency's terminal
// outcome. A still-running dependency reschedules the task without
// spending an attempt; a dead dependency kills the dependent task.
func (d *Dispatcher) dependencySatisfied(ctx context.Context, t *task.Task) bool {
	if t.DependsOn == nil {
		return true
	}

	dep, err := d.repo.FindByID(ctx, *t.DependsOn)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Dependency already cleaned up, so it reached a terminal
			// status long ago.
			return true
		}
		d.reschedule(ctx, t)
		return false
	}

	if dep.IsDead() {
		d.kill(ctx, t, fmt.Sprintf("dependency %s permanently failed", dep.ID))
		return false
	}
	if !dep.Status.IsTerminal() {
		d.reschedule(ctx, t)
		return false
	}
	return true
}

func (d *Dispatcher) reschedule(ctx context.Context, t *task.Task) {
	t.Reschedule(d.config.DependencyDelay)
	if err := d.repo.Update(ctx, t); err != nil {
		d.logger.Error("failed to reschedule task",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
	}
}

// recordTask reports one execution attempt with its resulting status
func (d *Dispatcher) recordTask(ctx context.Context, t *task.Task, started time.Time) {
	if d.config.Metrics == nil {
		return
	}
	d.config.Metrics.RecordTask(ctx, t.Kind.String(), string(t.Status), time.Since(started))
}

func (d *Dispatcher) fail(ctx context.Context, t *task.Task, errMsg string) {
	t.MarkFailed(errMsg, d.config.RetryPolicy)
	if t.IsDead() {
		d.logger.Warn("task moved to dead letter queue",
			zap.String("task_id", t.ID.String()),
			zap.String("kind", t.Kind.String()),
			zap.Int("attempts", t.Attempts),
			zap.String("last_error", t.LastError))
	}
	if err := d.repo.Update(ctx, t); err != nil {
		d.logger.Error("failed to update failed task",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
	}
}

// kill dead-letters a task without running out its attempts
func (d *Dispatcher) kill(ctx context.Context, t *task.Task, errMsg string) {
	t.Attempts = t.MaxAttempts - 1
	t.MarkFailed(errMsg, d.config.RetryPolicy)
	d.logger.Warn("task dead-lettered",
		zap.String("task_id", t.ID.String()),
		zap.String("kind", t.Kind.String()),
		zap.String("last_error", t.LastError))
	if err := d.repo.Update(ctx, t); err != nil {
		d.logger.Error("failed to update dead task",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
	}
}

func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup(ctx)
		}
	}
}

func (d *Dispatcher) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.CleanupRetention)
	deleted, err := d.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		d.logger.Error("failed to clean up old tasks", zap.Error(err))
		return
	}

	if deleted > 0 {
		d.logger.Info("cleaned up terminal tasks",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
