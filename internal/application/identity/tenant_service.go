package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// TenantService handles tenant onboarding and channel identity resolution
type TenantService struct {
	tenantRepo identity.TenantRepository
	events     shared.EventPublisher
	logger     *zap.Logger
}

// Option configures optional tenant service collaborators
type Option func(*TenantService)

// WithEventPublisher routes drained domain events to pub after each
// successful save
func WithEventPublisher(pub shared.EventPublisher) Option {
	return func(s *TenantService) {
		s.events = pub
	}
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
	opts ...Option,
) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TenantService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// drainEvents hands the aggregate's recorded events to the publisher
// and clears them. Publish failures are logged, never propagated.
func (s *TenantService) drainEvents(ctx context.Context, tenant *identity.Tenant) {
	events := tenant.GetDomainEvents()
	tenant.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
	}
}

// SignupInput contains input for registering a business
type SignupInput struct {
	ChannelIdentity string
	BusinessName    string
	ContactEmail    string
	ContactPhone    string
	Currency        string
	Password        string
	Payout          identity.PayoutDetails
}

// Signup registers a new business keyed to a channel identity
func (s *TenantService) Signup(ctx context.Context, input SignupInput) (*TenantDTO, error) {
	currency := valueobject.Currency(input.Currency)
	if input.Currency == "" {
		currency = valueobject.DefaultCurrency
	}

	tenant, err := identity.NewTenant(input.ChannelIdentity, input.BusinessName, currency)
	if err != nil {
		return nil, err
	}
	tenant.ContactEmail = input.ContactEmail
	tenant.ContactPhone = input.ContactPhone

	if input.Password != "" {
		if err := tenant.SetPassword(input.Password); err != nil {
			return nil, err
		}
	}
	if input.Payout.IsComplete() {
		tenant.UpdatePayout(input.Payout)
	}

	// Reject a channel identity that already resolves
	existing, err := s.tenantRepo.FindByChannelIdentity(ctx, tenant.ChannelIdentity)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("Signup rejected for claimed channel identity",
			zap.String("channel_identity", tenant.ChannelIdentity))
		return nil, shared.ErrAlreadyExists
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	s.drainEvents(ctx, tenant)

	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("business_name", tenant.BusinessName),
		zap.String("channel_identity", tenant.ChannelIdentity))

	return toTenantDTO(tenant), nil
}

// Resolve maps a raw sender identity to its owning active tenant.
// Returns shared.ErrTenantNotFound for unknown and disabled tenants
// alike; a disabled business must not silently receive invoices.
func (s *TenantService) Resolve(ctx context.Context, rawIdentity string) (*identity.Tenant, error) {
	canonical := identity.CanonicalChannelIdentity(rawIdentity)
	if canonical == "" {
		return nil, shared.ErrTenantNotFound
	}

	tenant, err := s.tenantRepo.FindByChannelIdentity(ctx, canonical)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrTenantNotFound
		}
		return nil, err
	}

	if !tenant.IsActive() {
		s.logger.Info("Resolution refused for disabled tenant",
			zap.String("tenant_id", tenant.ID.String()))
		return nil, shared.ErrTenantNotFound
	}

	return tenant, nil
}

// GetByID returns a tenant by ID
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// UpdatePayout replaces a tenant's payout details
func (s *TenantService) UpdatePayout(ctx context.Context, id uuid.UUID, payout identity.PayoutDetails) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.UpdatePayout(payout)

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// Disable soft-disables a tenant. Its invoices remain queryable but
// inbound messages no longer resolve to it.
func (s *TenantService) Disable(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := tenant.Disable(); err != nil {
		return err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return err
	}
	s.drainEvents(ctx, tenant)

	s.logger.Info("Tenant disabled", zap.String("tenant_id", id.String()))
	return nil
}

// Enable re-activates a disabled tenant
func (s *TenantService) Enable(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := tenant.Enable(); err != nil {
		return err
	}

	return s.tenantRepo.Save(ctx, tenant)
}

// Count returns the number of registered tenants
func (s *TenantService) Count(ctx context.Context) (int64, error) {
	return s.tenantRepo.Count(ctx, shared.Filter{})
}
