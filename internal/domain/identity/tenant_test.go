package identity

import (
	"testing"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	tenant, err := NewTenant("whatsapp:+2348031234567", "Ada Hair Studio", valueobject.NGN)
	require.NoError(t, err)

	assert.Equal(t, "2348031234567", tenant.ChannelIdentity)
	assert.Equal(t, "Ada Hair Studio", tenant.BusinessName)
	assert.Equal(t, valueobject.NGN, tenant.Currency)
	assert.Equal(t, TenantStatusActive, tenant.Status)
	assert.True(t, tenant.IsActive())

	events := tenant.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeTenantCreated, events[0].EventType())
}

func TestNewTenant_Validation(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		business string
		currency valueobject.Currency
	}{
		{"empty identity", "", "Shop", valueobject.NGN},
		{"identity without digits", "whatsapp:", "Shop", valueobject.NGN},
		{"empty business name", "2348031234567", "   ", valueobject.NGN},
		{"bad currency", "2348031234567", "Shop", valueobject.Currency("XXX")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTenant(tt.identity, tt.business, tt.currency)
			assert.Error(t, err)
		})
	}
}

func TestNewTenant_DefaultCurrency(t *testing.T) {
	tenant, err := NewTenant("2348031234567", "Shop", "")
	require.NoError(t, err)
	assert.Equal(t, valueobject.DefaultCurrency, tenant.Currency)
}

func TestTenant_DisableEnable(t *testing.T) {
	tenant, err := NewTenant("2348031234567", "Shop", valueobject.NGN)
	require.NoError(t, err)
	v := tenant.Version

	require.NoError(t, tenant.Disable())
	assert.Equal(t, TenantStatusDisabled, tenant.Status)
	assert.NotNil(t, tenant.DisabledAt)
	assert.False(t, tenant.IsActive())
	assert.Equal(t, v+1, tenant.Version)

	// Disabling twice is rejected
	assert.Error(t, tenant.Disable())

	require.NoError(t, tenant.Enable())
	assert.True(t, tenant.IsActive())
	assert.Nil(t, tenant.DisabledAt)
}

func TestCanonicalChannelIdentity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"gateway prefix", "whatsapp:+2348031234567", "2348031234567"},
		{"spaces and plus", " +234 803 123 4567 ", "2348031234567"},
		{"bare digits", "2348031234567", "2348031234567"},
		{"nigerian local format", "08031234567", "2348031234567"},
		{"tel scheme", "tel:+2348031234567", "2348031234567"},
		{"no digits", "whatsapp:", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalChannelIdentity(tt.raw))
		})
	}
}

func TestCanonicalChannelIdentity_SameTenantManyShapes(t *testing.T) {
	shapes := []string{
		"whatsapp:+2348031234567",
		"+234-803-123-4567",
		"08031234567",
		"2348031234567",
	}
	for _, s := range shapes {
		assert.Equal(t, "2348031234567", CanonicalChannelIdentity(s), s)
	}
}
