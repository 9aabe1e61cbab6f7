package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/persistence/models"
)

// newSQLiteDB opens an in-memory database so constraint behavior runs
// against a real engine instead of a statement mock.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_t="+t.Name()), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.PaymentEventModel{}))
	return db
}

func TestGormPaymentEventRepository_DuplicateConstraint(t *testing.T) {
	repo := NewGormPaymentEventRepository(newSQLiteDB(t))
	ctx := context.Background()

	first, err := invoice.NewPaymentEvent("stripe", "evt_abc", "INV-2026-0001")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	// Same delivery again; the unique index must reject it.
	second, err := invoice.NewPaymentEvent("stripe", "evt_abc", "INV-2026-0001")
	require.NoError(t, err)
	err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, shared.ErrDuplicateEvent)

	// A different provider with the same external ID is a new event.
	other, err := invoice.NewPaymentEvent("paystack", "evt_abc", "INV-2026-0001")
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, other))
}

func TestGormPaymentEventRepository_OutcomeRoundTrip(t *testing.T) {
	repo := NewGormPaymentEventRepository(newSQLiteDB(t))
	ctx := context.Background()

	event, err := invoice.NewPaymentEvent("stripe", "evt_roundtrip", "INV-2026-0002")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, event))

	event.RecordOutcome(invoice.OutcomeConfirmed)
	require.NoError(t, repo.Update(ctx, event))

	found, err := repo.FindByProviderEventID(ctx, "stripe", "evt_roundtrip")
	require.NoError(t, err)
	assert.Equal(t, invoice.OutcomeConfirmed, found.Outcome)
	assert.NotNil(t, found.ProcessedAt)
}
