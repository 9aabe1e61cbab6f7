package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
)

// TaskModel is the persistence model for durable background tasks.
// Indexes cover the dispatcher's two polls: due pending work and
// retryable failures.
type TaskModel struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	Kind        task.Kind   `gorm:"type:varchar(50);not null"`
	Payload     []byte      `gorm:"type:jsonb;not null"`
	Status      task.Status `gorm:"type:varchar(20);default:PENDING;index:idx_tasks_status_next_run,priority:1"`
	Attempts    int         `gorm:"default:0"`
	MaxAttempts int         `gorm:"default:5"`
	LastError   string      `gorm:"type:text"`
	DependsOn   *uuid.UUID  `gorm:"type:uuid;index"`
	NextRunAt   *time.Time  `gorm:"index:idx_tasks_status_next_run,priority:2"`
	ProcessedAt *time.Time
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *task.Task {
	return &task.Task{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Kind:        m.Kind,
		Payload:     m.Payload,
		Status:      m.Status,
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		LastError:   m.LastError,
		DependsOn:   m.DependsOn,
		NextRunAt:   m.NextRunAt,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *task.Task) {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.Kind = t.Kind
	m.Payload = t.Payload
	m.Status = t.Status
	m.Attempts = t.Attempts
	m.MaxAttempts = t.MaxAttempts
	m.LastError = t.LastError
	m.DependsOn = t.DependsOn
	m.NextRunAt = t.NextRunAt
	m.ProcessedAt = t.ProcessedAt
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// TaskModelFromDomain creates a new persistence model from a domain Task
func TaskModelFromDomain(t *task.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
