package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/persistence/models"
)

// GormTaskRepository implements the durable task store using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormTaskRepository) WithTx(tx *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: tx}
}

// Enqueue persists tasks for eventual execution
func (r *GormTaskRepository) Enqueue(ctx context.Context, tasks ...*task.Task) error {
	return r.Save(ctx, tasks...)
}

// Save persists one or more tasks
func (r *GormTaskRepository) Save(ctx context.Context, tasks ...*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	taskModels := make([]*models.TaskModel, len(tasks))
	for i, t := range tasks {
		taskModels[i] = models.TaskModelFromDomain(t)
	}
	return r.db.WithContext(ctx).Create(taskModels).Error
}

// FindDue retrieves pending tasks whose run time has arrived
func (r *GormTaskRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*task.Task, error) {
	var taskModels []*models.TaskModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND (next_run_at IS NULL OR next_run_at <= ?)", task.StatusPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&taskModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainTasks(taskModels), nil
}

// FindRetryable retrieves failed tasks that are due for another attempt
func (r *GormTaskRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	var taskModels []*models.TaskModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_run_at <= ?", task.StatusFailed, before).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&taskModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainTasks(taskModels), nil
}

// FindByID retrieves a single task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDead retrieves dead tasks with pagination
func (r *GormTaskRepository) FindDead(ctx context.Context, page, pageSize int) ([]*task.Task, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("status = ?", task.StatusDead).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var taskModels []*models.TaskModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", task.StatusDead).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&taskModels).Error; err != nil {
		return nil, 0, err
	}

	return toDomainTasks(taskModels), total, nil
}

// MarkProcessing atomically claims tasks for a worker and returns the
// ones actually claimed. FOR UPDATE SKIP LOCKED lets competing workers
// claim disjoint sets.
func (r *GormTaskRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var taskModels []*models.TaskModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Options:  "SKIP LOCKED",
			}).
			Where("id IN ? AND status IN ?", ids, []task.Status{
				task.StatusPending,
				task.StatusFailed,
			}).
			Find(&taskModels).Error; err != nil {
			return err
		}

		if len(taskModels) == 0 {
			return nil
		}

		claimedIDs := make([]uuid.UUID, len(taskModels))
		for i, m := range taskModels {
			claimedIDs[i] = m.ID
		}

		now := time.Now()
		if err := tx.Model(&models.TaskModel{}).
			Where("id IN ?", claimedIDs).
			Updates(map[string]interface{}{
				"status":     task.StatusProcessing,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		for _, m := range taskModels {
			m.Status = task.StatusProcessing
			m.UpdatedAt = now
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return toDomainTasks(taskModels), nil
}

// Update updates an existing task
func (r *GormTaskRepository) Update(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = time.Now()
	model := models.TaskModelFromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteOlderThan deletes terminal tasks older than the given time
func (r *GormTaskRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND processed_at < ?", []task.Status{
			task.StatusSucceeded,
			task.StatusDead,
		}, before).
		Delete(&models.TaskModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns task counts per status
func (r *GormTaskRepository) CountByStatus(ctx context.Context) (map[task.Status]int64, error) {
	type statusCount struct {
		Status task.Status
		Count  int64
	}

	var results []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[task.Status]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func toDomainTasks(taskModels []*models.TaskModel) []*task.Task {
	tasks := make([]*task.Task, len(taskModels))
	for i, m := range taskModels {
		tasks[i] = m.ToDomain()
	}
	return tasks
}

// Ensure GormTaskRepository satisfies the domain contracts
var (
	_ task.Repository = (*GormTaskRepository)(nil)
	_ task.Enqueuer   = (*GormTaskRepository)(nil)
)
