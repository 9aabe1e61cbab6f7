package identity

import (
	"strings"
	"time"
	"unicode"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// Password cost for bcrypt
const bcryptCost = 12

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusDisabled TenantStatus = "disabled" // Soft-disabled; never hard-deleted
)

// PayoutDetails holds the bank account a tenant's customers pay into.
// Shown on rendered invoices.
type PayoutDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// IsComplete reports whether all payout fields are set
func (p PayoutDetails) IsComplete() bool {
	return p.BankName != "" && p.AccountName != "" && p.AccountNumber != ""
}

// Tenant represents a business account in the multi-tenant system.
// It is addressed by exactly one canonical channel identity and
// exclusively owns its invoices.
type Tenant struct {
	shared.BaseAggregateRoot
	ChannelIdentity string
	BusinessName    string
	ContactEmail    string
	ContactPhone    string
	Currency        valueobject.Currency
	Payout          PayoutDetails
	Status          TenantStatus
	PasswordHash    string
	DisabledAt      *time.Time
}

// NewTenant creates a new tenant with required fields. The channel
// identity is canonicalized before storage so that resolution is an
// exact-match lookup.
func NewTenant(channelIdentity, businessName string, currency valueobject.Currency) (*Tenant, error) {
	canonical := CanonicalChannelIdentity(channelIdentity)
	if canonical == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_IDENTITY", "Channel identity cannot be empty")
	}
	if strings.TrimSpace(businessName) == "" {
		return nil, shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if len(businessName) > 200 {
		return nil, shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency code")
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ChannelIdentity:   canonical,
		BusinessName:      strings.TrimSpace(businessName),
		Currency:          currency,
		Status:            TenantStatusActive,
	}

	t.AddDomainEvent(NewTenantCreatedEvent(t))

	return t, nil
}

// IsActive returns true if the tenant can own and receive messages
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Disable soft-disables the tenant. Its data is retained but it no
// longer resolves for inbound messages.
func (t *Tenant) Disable() error {
	if t.Status == TenantStatusDisabled {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already disabled")
	}
	now := time.Now()
	t.Status = TenantStatusDisabled
	t.DisabledAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantDisabledEvent(t))
	return nil
}

// Enable re-activates a disabled tenant
func (t *Tenant) Enable() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already active")
	}
	t.Status = TenantStatusActive
	t.DisabledAt = nil
	t.Touch()
	t.IncrementVersion()
	return nil
}

// UpdatePayout replaces the tenant's payout details
func (t *Tenant) UpdatePayout(payout PayoutDetails) {
	t.Payout = payout
	t.Touch()
	t.IncrementVersion()
}

// SetPassword hashes and stores the tenant API password
func (t *Tenant) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}
	t.PasswordHash = string(hash)
	t.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (t *Tenant) VerifyPassword(password string) bool {
	if t.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) == nil
}

// CanonicalChannelIdentity normalizes a raw channel sender identifier to
// canonical form. Gateways deliver the same sender in several shapes
// ("whatsapp:+2348031234567", " +234 803 123 4567", "2348031234567");
// all of them must map to one tenant.
func CanonicalChannelIdentity(raw string) string {
	s := norm.NFKC.String(strings.TrimSpace(raw))
	s = strings.ToLower(s)

	// Strip gateway scheme prefixes like "whatsapp:" or "tel:".
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[i+1:]
	}

	// Keep digits only; a leading "+" and separators are presentation.
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	// Nigerian local format 080... -> international 23480...
	if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		digits = "234" + digits[1:]
	}

	return digits
}
