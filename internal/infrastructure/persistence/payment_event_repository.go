package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/persistence/models"
)

// GormPaymentEventRepository implements PaymentEventRepository using GORM
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewGormPaymentEventRepository creates a new GormPaymentEventRepository
func NewGormPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// Create inserts a new payment event. The (provider, external_event_id)
// unique index rejects redeliveries; concurrent inserts of the same
// event resolve to exactly one winner at the database.
func (r *GormPaymentEventRepository) Create(ctx context.Context, event *invoice.PaymentEvent) error {
	model := models.PaymentEventModelFromDomain(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateEvent
		}
		return err
	}
	event.CreatedAt = model.CreatedAt
	event.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByProviderEventID returns the recorded event for a redelivery
func (r *GormPaymentEventRepository) FindByProviderEventID(ctx context.Context, provider, externalEventID string) (*invoice.PaymentEvent, error) {
	var model models.PaymentEventModel
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND external_event_id = ?", provider, externalEventID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update persists outcome changes on an existing event
func (r *GormPaymentEventRepository) Update(ctx context.Context, event *invoice.PaymentEvent) error {
	model := models.PaymentEventModelFromDomain(event)
	return r.db.WithContext(ctx).Save(model).Error
}
