package claims

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/shareplate-api/internal/models"
)

func TestMemoryStore_BeginClaimCAS(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	listingID := uuid.New()
	requester := uuid.New()
	store.AddListing(&models.Listing{
		ID:     listingID,
		UserID: uuid.New(),
		Status: models.ListingStatusAvailable,
	})

	require.NoError(t, store.BeginClaim(ctx, listingID, uuid.New(), requester, now))

	// Повторная попытка проигрывает проверку статуса
	err := store.BeginClaim(ctx, listingID, uuid.New(), uuid.New(), now)
	assert.ErrorIs(t, err, ErrConflict)

	// Неизвестное объявление
	err = store.BeginClaim(ctx, uuid.New(), uuid.New(), requester, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_FinalizeClaimGuards(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	listingID := uuid.New()
	claimID := uuid.New()
	requester := uuid.New()
	store.AddListing(&models.Listing{
		ID:     listingID,
		UserID: uuid.New(),
		Status: models.ListingStatusAvailable,
	})
	require.NoError(t, store.BeginClaim(ctx, listingID, claimID, requester, now))

	// Несовпадающий заявитель встроенной заявки — конфликт
	err := store.FinalizeClaim(ctx, listingID, claimID, uuid.New(), true, now)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.FinalizeClaim(ctx, listingID, claimID, requester, false, now))

	// Терминальная заявка не рассматривается повторно
	err = store.FinalizeClaim(ctx, listingID, claimID, requester, true, now)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_GetListingReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	listingID := uuid.New()
	store.AddListing(&models.Listing{
		ID:     listingID,
		UserID: uuid.New(),
		Status: models.ListingStatusAvailable,
	})

	l1, err := store.GetListing(ctx, listingID)
	require.NoError(t, err)

	// Изменение копии не затрагивает хранилище
	l1.Status = models.ListingStatusArchived

	l2, err := store.GetListing(ctx, listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusAvailable, l2.Status)
}
