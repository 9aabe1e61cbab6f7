package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/dto"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/middleware"
)

// TaskHandler exposes dispatcher observability: dead letters and queue
// depth per status.
type TaskHandler struct {
	BaseHandler
	repo task.Repository
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(repo task.Repository) *TaskHandler {
	return &TaskHandler{repo: repo}
}

// RegisterRoutes registers task routes
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.GET("/dead", h.ListDead)
	tasks.GET("/status", h.Status)
}

// TaskResponse represents one task in API responses. Payload bytes are
// omitted; the kind and error tell the operator what to look at.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	LastError   string     `json:"last_error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		Kind:        t.Kind.String(),
		Status:      string(t.Status),
		Attempts:    t.Attempts,
		MaxAttempts: t.MaxAttempts,
		LastError:   t.LastError,
		ProcessedAt: t.ProcessedAt,
		CreatedAt:   t.CreatedAt,
	}
}

// ListDead returns tasks that exhausted their attempts
func (h *TaskHandler) ListDead(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tasks, total, err := h.repo.FindDead(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toTaskResponse(t))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Status returns task counts per status
func (h *TaskHandler) Status(c *gin.Context) {
	counts, err := h.repo.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result := make(map[string]int64, len(counts))
	for status, count := range counts {
		result[string(status)] = count
	}

	h.Success(c, result)
}
