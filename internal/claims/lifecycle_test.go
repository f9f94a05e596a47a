package claims

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/shareplate-api/internal/models"
)

// -------- test fakes --------

type fakeSink struct {
	mu            sync.Mutex
	notifications []models.Notification
	err           error
}

func (f *fakeSink) Notify(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeSink) sent() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.notifications...)
}

// -------- helpers --------

type fixture struct {
	store     *MemoryStore
	sink      *fakeSink
	lifecycle *Lifecycle
	owner     uuid.UUID
	requester uuid.UUID
	listingID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := NewMemoryStore()
	sink := &fakeSink{}

	owner := uuid.New()
	requester := uuid.New()
	listingID := uuid.New()

	store.AddUser(&models.User{ID: owner, Name: "Ольга"})
	store.AddUser(&models.User{ID: requester, Name: "Марат"})
	store.AddListing(&models.Listing{
		ID:       listingID,
		UserID:   owner,
		Title:    "Домашний хлеб",
		Category: "bakery",
		Status:   models.ListingStatusAvailable,
	})

	return &fixture{
		store:     store,
		sink:      sink,
		lifecycle: NewLifecycle(store, sink),
		owner:     owner,
		requester: requester,
		listingID: listingID,
	}
}

// -------- tests --------

func TestRequestClaim_RoundTripApprove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, claimID)

	// Объявление перешло в pending со встроенной заявкой
	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, listing.Status)
	require.NotNil(t, listing.PendingClaim)
	assert.Equal(t, f.requester, listing.PendingClaim.UserID)
	assert.False(t, listing.PendingClaim.RequestedAt.IsZero())

	// Создана запись заявки в статусе pending
	claim, err := f.store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, f.listingID, claim.ListingID)
	assert.Equal(t, f.requester, claim.RequesterID)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)

	// Владелец получил уведомление о заявке
	sent := f.sink.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, f.owner, sent[0].UserID)
	assert.Equal(t, models.NotificationTypeClaim, sent[0].Type)
	assert.Contains(t, sent[0].Message, "Марат")
	assert.Contains(t, sent[0].Message, "Домашний хлеб")

	// Владелец одобряет заявку
	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionApprove)
	require.NoError(t, err)

	listing, err = f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClaimed, listing.Status)
	assert.Nil(t, listing.PendingClaim)
	require.NotNil(t, listing.ClaimedBy)
	assert.Equal(t, f.requester, *listing.ClaimedBy)
	require.NotNil(t, listing.ClaimedAt)

	claim, err = f.store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, claim.Status)
	require.NotNil(t, claim.ReviewedAt)

	// Заявитель получил уведомление о принятии
	sent = f.sink.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, f.requester, sent[1].UserID)
	assert.Equal(t, models.NotificationTypeClaimAccepted, sent[1].Type)
}

func TestReviewClaim_Decline(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionDecline)
	require.NoError(t, err)

	// Объявление снова доступно, встроенная заявка очищена
	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusAvailable, listing.Status)
	assert.Nil(t, listing.PendingClaim)
	assert.Nil(t, listing.ClaimedBy)

	// Запись заявки сохранена как отклоненная
	claim, err := f.store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusRejected, claim.Status)

	sent := f.sink.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, models.NotificationTypeClaimDeclined, sent[1].Type)
	assert.Equal(t, f.requester, sent[1].UserID)

	// Объявление сразу же доступно для новой заявки
	other := uuid.New()
	f.store.AddUser(&models.User{ID: other, Name: "Айгуль"})
	claimID2, err := f.lifecycle.RequestClaim(ctx, f.listingID, other)
	require.NoError(t, err)
	assert.NotEqual(t, claimID, claimID2)
}

func TestRequestClaim_SelfClaim(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.owner)
	assert.ErrorIs(t, err, ErrSelfClaim)

	// Самозаявка запрещена и в статусе pending
	_, err = f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	_, err = f.lifecycle.RequestClaim(ctx, f.listingID, f.owner)
	assert.ErrorIs(t, err, ErrSelfClaim)
}

func TestRequestClaim_NotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.RequestClaim(ctx, uuid.New(), f.requester)
	assert.ErrorIs(t, err, ErrNotFound)

	// Неизвестный заявитель тоже прерывает операцию
	_, err = f.lifecycle.RequestClaim(ctx, f.listingID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// Состояние объявления не изменилось
	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusAvailable, listing.Status)
}

func TestRequestClaim_ConcurrentMutualExclusion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	const workers = 32

	requesters := make([]uuid.UUID, workers)
	for i := range requesters {
		id := uuid.New()
		requesters[i] = id
		f.store.AddUser(&models.User{ID: id, Name: "Заявитель"})
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.RequestClaim(ctx, f.listingID, requesters[i])
		}(i)
	}
	wg.Wait()

	// Из конкурентных заявок успешна ровно одна, остальные получили конфликт
	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
			conflicted++
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)

	// Создана ровно одна запись заявки
	f.store.mu.Lock()
	claimCount := len(f.store.claims)
	f.store.mu.Unlock()
	assert.Equal(t, 1, claimCount)

	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, listing.Status)
	require.NotNil(t, listing.PendingClaim)
}

func TestRequestClaim_RejectedWhilePending(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	other := uuid.New()
	f.store.AddUser(&models.User{ID: other, Name: "Айгуль"})

	_, err = f.lifecycle.RequestClaim(ctx, f.listingID, other)
	assert.ErrorIs(t, err, ErrConflict)

	// Второй записи заявки не появилось
	f.store.mu.Lock()
	claimCount := len(f.store.claims)
	f.store.mu.Unlock()
	assert.Equal(t, 1, claimCount)
}

func TestReviewClaim_NotOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	stranger := uuid.New()
	f.store.AddUser(&models.User{ID: stranger, Name: "Посторонний"})

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, stranger, claimID, DecisionApprove)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Даже заявитель не может одобрить собственную заявку
	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.requester, claimID, DecisionApprove)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Состояние не изменилось
	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, listing.Status)
	require.NotNil(t, listing.PendingClaim)

	claim, err := f.store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
}

func TestReviewClaim_TerminalStateIdempotence(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionApprove)
	require.NoError(t, err)

	sentBefore := len(f.sink.sent())

	// Повторное рассмотрение терминальной заявки — конфликт без
	// новых уведомлений
	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionApprove)
	assert.ErrorIs(t, err, ErrConflict)

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionDecline)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, sentBefore, len(f.sink.sent()))

	claim, err := f.store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, claim.Status)
}

func TestReviewClaim_InvalidDecision(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, Decision("maybe"))
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestReviewClaim_ClaimMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	// Вторая пара объявление+заявка того же владельца
	otherListing := uuid.New()
	f.store.AddListing(&models.Listing{
		ID:       otherListing,
		UserID:   f.owner,
		Title:    "Овощи с дачи",
		Category: "produce",
		Status:   models.ListingStatusAvailable,
	})
	otherClaim, err := f.lifecycle.RequestClaim(ctx, otherListing, f.requester)
	require.NoError(t, err)

	// Заявка от чужого объявления не принимается
	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, otherClaim, DecisionApprove)
	assert.ErrorIs(t, err, ErrClaimMismatch)

	// Несуществующая заявка — NotFound
	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, uuid.New(), DecisionApprove)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewClaim_NoPendingClaim(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	err := f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, uuid.New(), DecisionApprove)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestNotify_SinkFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.sink.err = errors.New("хранилище уведомлений недоступно")

	// Переход фиксируется даже при недоступном стоке уведомлений
	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)

	err = f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionApprove)
	require.NoError(t, err)

	listing, err := f.store.GetListing(ctx, f.listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClaimed, listing.Status)
}

func TestPendingClaimInvariant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	checkInvariant := func() {
		t.Helper()
		listing, err := f.store.GetListing(ctx, f.listingID)
		require.NoError(t, err)
		if listing.Status == models.ListingStatusPending {
			assert.NotNil(t, listing.PendingClaim)
		} else {
			assert.Nil(t, listing.PendingClaim)
		}
	}

	// pending_claim заполнен тогда и только тогда, когда статус pending —
	// после каждой операции последовательности
	checkInvariant()

	claimID, err := f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)
	checkInvariant()

	require.NoError(t, f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionDecline))
	checkInvariant()

	claimID, err = f.lifecycle.RequestClaim(ctx, f.listingID, f.requester)
	require.NoError(t, err)
	checkInvariant()

	require.NoError(t, f.lifecycle.ReviewClaim(ctx, f.listingID, f.owner, claimID, DecisionApprove))
	checkInvariant()
}
