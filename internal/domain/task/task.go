package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a dispatched task does
type Kind string

const (
	KindProcessInbound   Kind = "process_inbound"
	KindRenderInvoice    Kind = "render_invoice"
	KindRenderReceipt    Kind = "render_receipt"
	KindSendNotification Kind = "send_notification"
	KindSendDocument     Kind = "send_document"
)

// IsValid checks if the kind is a known task kind
func (k Kind) IsValid() bool {
	switch k {
	case KindProcessInbound, KindRenderInvoice, KindRenderReceipt,
		KindSendNotification, KindSendDocument:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Status represents the status of a dispatched task
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
	StatusDead       Status = "DEAD"
)

// IsTerminal returns true once the task will never run again
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusDead
}

// Default retry configuration
const (
	DefaultMaxAttempts = 5
	DefaultBaseBackoff = time.Second
)

// Task is a unit of background work stored durably until a worker
// completes or exhausts it. Tasks are independent except that a task
// with DependsOn set only runs after that task reaches a terminal
// status.
type Task struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Kind        Kind
	Payload     []byte
	Status      Status
	Attempts    int
	MaxAttempts int
	LastError   string
	DependsOn   *uuid.UUID
	NextRunAt   *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a pending task
func New(tenantID uuid.UUID, kind Kind, payload []byte) *Task {
	return &Task{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Kind:        kind,
		Payload:     payload,
		Status:      StatusPending,
		Attempts:    0,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// Touch records a state change on the task.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now()
}

// After marks this task as dependent on another task's terminal outcome
func (t *Task) After(dep uuid.UUID) *Task {
	t.DependsOn = &dep
	return t
}

// CanRetry returns true if the task can run again after a failure
func (t *Task) CanRetry() bool {
	return t.Status == StatusFailed && t.Attempts < t.MaxAttempts
}

// MarkProcessing claims the task for a worker
func (t *Task) MarkProcessing() error {
	if t.Status != StatusPending && t.Status != StatusFailed {
		return errors.New("can only mark pending or failed tasks as processing")
	}
	t.Status = StatusProcessing
	t.Touch()
	return nil
}

// MarkSucceeded records successful completion
func (t *Task) MarkSucceeded() {
	now := time.Now()
	t.Status = StatusSucceeded
	t.ProcessedAt = &now
	t.UpdatedAt = now
}

// MarkFailed records a failed attempt and schedules the next one per
// the given policy. The task goes dead once attempts are exhausted.
func (t *Task) MarkFailed(errMsg string, policy RetryPolicy) {
	t.Attempts++
	t.LastError = errMsg
	t.Touch()

	if t.Attempts >= t.MaxAttempts {
		t.Status = StatusDead
		now := t.UpdatedAt
		t.ProcessedAt = &now
	} else {
		t.Status = StatusFailed
		nextRun := time.Now().Add(policy.Delay(t.Attempts))
		t.NextRunAt = &nextRun
	}
}

// Reschedule pushes a pending task's run time back without counting an
// attempt. Used when a dependency has not reached a terminal outcome.
func (t *Task) Reschedule(delay time.Duration) {
	next := time.Now().Add(delay)
	t.Status = StatusPending
	t.NextRunAt = &next
	t.Touch()
}

// ResetForRetry revives a dead task
func (t *Task) ResetForRetry() error {
	if t.Status != StatusDead {
		return errors.New("can only retry dead tasks")
	}
	t.Status = StatusPending
	t.Attempts = 0
	t.LastError = ""
	t.NextRunAt = nil
	t.ProcessedAt = nil
	t.Touch()
	return nil
}

// IsDead returns true if the task is permanently failed
func (t *Task) IsDead() bool {
	return t.Status == StatusDead
}
