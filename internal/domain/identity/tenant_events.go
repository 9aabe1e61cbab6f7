package identity

import (
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTenant = "Tenant"

// Event type constants
const (
	EventTypeTenantCreated  = "TenantCreated"
	EventTypeTenantDisabled = "TenantDisabled"
)

// TenantCreatedEvent is published when a new tenant is created
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	ChannelIdentity string       `json:"channel_identity"`
	BusinessName    string       `json:"business_name"`
	Status          TenantStatus `json:"status"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(tenant *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, AggregateTypeTenant, tenant.ID, tenant.ID),
		ChannelIdentity: tenant.ChannelIdentity,
		BusinessName:    tenant.BusinessName,
		Status:          tenant.Status,
	}
}

// TenantDisabledEvent is published when a tenant is soft-disabled
type TenantDisabledEvent struct {
	shared.BaseDomainEvent
	ChannelIdentity string `json:"channel_identity"`
}

// NewTenantDisabledEvent creates a new TenantDisabledEvent
func NewTenantDisabledEvent(tenant *Tenant) *TenantDisabledEvent {
	return &TenantDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantDisabled, AggregateTypeTenant, tenant.ID, tenant.ID),
		ChannelIdentity: tenant.ChannelIdentity,
	}
}
