package models

import (
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

// TenantModel is the persistence model for the Tenant domain aggregate.
// The channel identity is stored in canonical form, so resolution is a
// unique-index lookup.
type TenantModel struct {
	AggregateModel
	ChannelIdentity     string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	BusinessName        string                `gorm:"type:varchar(200);not null"`
	ContactEmail        string                `gorm:"type:varchar(200)"`
	ContactPhone        string                `gorm:"type:varchar(50)"`
	Currency            valueobject.Currency  `gorm:"type:varchar(3);not null;default:'NGN'"`
	PayoutBankName      string                `gorm:"type:varchar(100)"`
	PayoutAccountName   string                `gorm:"type:varchar(200)"`
	PayoutAccountNumber string                `gorm:"type:varchar(50)"`
	Status              identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	PasswordHash        string                `gorm:"type:varchar(200)"`
	DisabledAt          *time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant aggregate
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ChannelIdentity: m.ChannelIdentity,
		BusinessName:    m.BusinessName,
		ContactEmail:    m.ContactEmail,
		ContactPhone:    m.ContactPhone,
		Currency:        m.Currency,
		Payout: identity.PayoutDetails{
			BankName:      m.PayoutBankName,
			AccountName:   m.PayoutAccountName,
			AccountNumber: m.PayoutAccountNumber,
		},
		Status:       m.Status,
		PasswordHash: m.PasswordHash,
		DisabledAt:   m.DisabledAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant aggregate
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ChannelIdentity = t.ChannelIdentity
	m.BusinessName = t.BusinessName
	m.ContactEmail = t.ContactEmail
	m.ContactPhone = t.ContactPhone
	m.Currency = t.Currency
	m.PayoutBankName = t.Payout.BankName
	m.PayoutAccountName = t.Payout.AccountName
	m.PayoutAccountNumber = t.Payout.AccountNumber
	m.Status = t.Status
	m.PasswordHash = t.PasswordHash
	m.DisabledAt = t.DisabledAt
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
