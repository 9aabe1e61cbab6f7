package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
)

// TenantDTO represents tenant data returned to the API
type TenantDTO struct {
	ID              uuid.UUID              `json:"id"`
	ChannelIdentity string                 `json:"channel_identity"`
	BusinessName    string                 `json:"business_name"`
	ContactEmail    string                 `json:"contact_email,omitempty"`
	ContactPhone    string                 `json:"contact_phone,omitempty"`
	Currency        string                 `json:"currency"`
	Status          string                 `json:"status"`
	Payout          identity.PayoutDetails `json:"payout"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toTenantDTO(t *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:              t.ID,
		ChannelIdentity: t.ChannelIdentity,
		BusinessName:    t.BusinessName,
		ContactEmail:    t.ContactEmail,
		ContactPhone:    t.ContactPhone,
		Currency:        t.Currency.String(),
		Status:          string(t.Status),
		Payout:          t.Payout,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// LoginInput contains credentials for the tenant API
type LoginInput struct {
	ChannelIdentity string `json:"channel_identity" binding:"required"`
	Password        string `json:"password" binding:"required"`
}
