package claims

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

// MemoryStore — реализация Store в памяти с той же семантикой
// атомарности, что и у PGStore: обе операции записи выполняются под
// одной блокировкой, проверка и запись неразделимы.
type MemoryStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*models.Listing
	users    map[uuid.UUID]*models.User
	claims   map[uuid.UUID]*models.ClaimRecord
}

// NewMemoryStore создает пустой MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[uuid.UUID]*models.Listing),
		users:    make(map[uuid.UUID]*models.User),
		claims:   make(map[uuid.UUID]*models.ClaimRecord),
	}
}

// AddUser добавляет пользователя
func (s *MemoryStore) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// AddListing добавляет объявление
func (s *MemoryStore) AddListing(l *models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = copyListing(l)
}

// GetListing возвращает копию объявления
func (s *MemoryStore) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyListing(l), nil
}

// GetUser возвращает копию пользователя
func (s *MemoryStore) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetClaim возвращает копию заявки
func (s *MemoryStore) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.claims[claimID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// BeginClaim атомарно переводит объявление в pending и создает заявку
func (s *MemoryStore) BeginClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return ErrNotFound
	}

	if l.Status != models.ListingStatusAvailable {
		return ErrConflict
	}

	l.Status = models.ListingStatusPending
	l.PendingClaim = &models.PendingClaim{UserID: requesterID, RequestedAt: now}
	l.UpdatedAt = now

	s.claims[claimID] = &models.ClaimRecord{
		ID:          claimID,
		ListingID:   listingID,
		RequesterID: requesterID,
		Status:      models.ClaimStatusPending,
		ClaimedAt:   now,
	}

	return nil
}

// FinalizeClaim атомарно применяет решение к объявлению и заявке
func (s *MemoryStore) FinalizeClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, approve bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return ErrNotFound
	}

	c, ok := s.claims[claimID]
	if !ok {
		return ErrNotFound
	}

	if l.Status != models.ListingStatusPending ||
		l.PendingClaim == nil || l.PendingClaim.UserID != requesterID {
		return ErrConflict
	}

	if c.ListingID != listingID || c.Status != models.ClaimStatusPending {
		return ErrConflict
	}

	if approve {
		l.Status = models.ListingStatusClaimed
		claimedBy := l.PendingClaim.UserID
		claimedAt := now
		l.ClaimedBy = &claimedBy
		l.ClaimedAt = &claimedAt
		c.Status = models.ClaimStatusApproved
	} else {
		l.Status = models.ListingStatusAvailable
		c.Status = models.ClaimStatusRejected
	}

	l.PendingClaim = nil
	l.UpdatedAt = now
	reviewedAt := now
	c.ReviewedAt = &reviewedAt

	return nil
}

// copyListing делает копию объявления, чтобы вызывающий код не имел
// доступа к внутреннему состоянию хранилища
func copyListing(l *models.Listing) *models.Listing {
	cp := *l
	if l.PendingClaim != nil {
		pc := *l.PendingClaim
		cp.PendingClaim = &pc
	}
	if l.Images != nil {
		cp.Images = append([]models.ListingImage(nil), l.Images...)
	}
	return &cp
}
