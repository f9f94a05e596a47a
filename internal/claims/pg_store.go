package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

// PGStore — реализация Store поверх PostgreSQL. Взаимное исключение
// обеспечивается условными UPDATE по статусу: из конкурентных
// транзакций строку изменяет ровно одна, остальные видят
// RowsAffected() == 0 и получают ErrConflict.
type PGStore struct{}

// NewPGStore создает новый экземпляр PGStore
func NewPGStore() *PGStore {
	return &PGStore{}
}

// GetListing возвращает объявление по ID
func (s *PGStore) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	var quantity, location, contact pgtype.Text
	var expiryDate, pendingRequestedAt, claimedAt *time.Time
	var pendingUserID, claimedBy *uuid.UUID

	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, category, quantity, location, contact,
		       expiry_date, status, pending_claim_user_id, pending_claim_requested_at,
		       claimed_by, claimed_at, created_at, updated_at
		FROM listings
		WHERE id = $1
	`, listingID).Scan(
		&l.ID, &l.UserID, &l.Title, &l.Description, &l.Category,
		&quantity, &location, &contact,
		&expiryDate, &l.Status, &pendingUserID, &pendingRequestedAt,
		&claimedBy, &claimedAt, &l.CreatedAt, &l.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при запросе объявления: %w", err)
	}

	// Преобразуем nullable поля
	if quantity.Valid {
		l.Quantity = quantity.String
	}
	if location.Valid {
		l.Location = location.String
	}
	if contact.Valid {
		l.Contact = contact.String
	}
	l.ExpiryDate = expiryDate
	l.ClaimedBy = claimedBy
	l.ClaimedAt = claimedAt

	if pendingUserID != nil && pendingRequestedAt != nil {
		l.PendingClaim = &models.PendingClaim{
			UserID:      *pendingUserID,
			RequestedAt: *pendingRequestedAt,
		}
	}

	return &l, nil
}

// GetUser возвращает пользователя по ID
func (s *PGStore) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	var avatarURL pgtype.Text

	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, avatar_url FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Name, &avatarURL)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при запросе пользователя: %w", err)
	}

	if avatarURL.Valid {
		u.AvatarURL = avatarURL.String
	}

	return &u, nil
}

// GetClaim возвращает заявку по ID
func (s *PGStore) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.ClaimRecord, error) {
	var c models.ClaimRecord
	var reviewedAt *time.Time

	err := db.Pool.QueryRow(ctx, `
		SELECT id, listing_id, requester_id, status, claimed_at, reviewed_at
		FROM claims
		WHERE id = $1
	`, claimID).Scan(&c.ID, &c.ListingID, &c.RequesterID, &c.Status, &c.ClaimedAt, &reviewedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при запросе заявки: %w", err)
	}

	c.ReviewedAt = reviewedAt
	return &c, nil
}

// BeginClaim атомарно переводит объявление в pending и создает заявку
func (s *PGStore) BeginClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, now time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Условное обновление: из конкурентных заявок на одно объявление
	// побеждает ровно одна
	tag, err := tx.Exec(ctx, `
		UPDATE listings
		SET status = 'pending', pending_claim_user_id = $1,
		    pending_claim_requested_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'available'
	`, requesterID, now, listingID)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении объявления: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO claims (id, listing_id, requester_id, status, claimed_at)
		VALUES ($1, $2, $3, 'pending', $4)
	`, claimID, listingID, requesterID, now)

	if err != nil {
		return fmt.Errorf("ошибка при создании заявки: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

// FinalizeClaim атомарно применяет решение владельца к объявлению и заявке
func (s *PGStore) FinalizeClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, approve bool, now time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var tag pgconn.CommandTag
	claimStatus := models.ClaimStatusRejected

	// Обе ветки защищены условием на статус и на заявителя встроенной
	// заявки: если между чтением и записью состояние изменилось,
	// строка не обновится
	if approve {
		claimStatus = models.ClaimStatusApproved
		tag, err = tx.Exec(ctx, `
			UPDATE listings
			SET status = 'claimed', claimed_by = pending_claim_user_id, claimed_at = $1,
			    pending_claim_user_id = NULL, pending_claim_requested_at = NULL, updated_at = NOW()
			WHERE id = $2 AND status = 'pending' AND pending_claim_user_id = $3
		`, now, listingID, requesterID)
	} else {
		tag, err = tx.Exec(ctx, `
			UPDATE listings
			SET status = 'available',
			    pending_claim_user_id = NULL, pending_claim_requested_at = NULL, updated_at = NOW()
			WHERE id = $1 AND status = 'pending' AND pending_claim_user_id = $2
		`, listingID, requesterID)
	}

	if err != nil {
		return fmt.Errorf("ошибка при обновлении объявления: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	tag, err = tx.Exec(ctx, `
		UPDATE claims
		SET status = $1, reviewed_at = $2
		WHERE id = $3 AND listing_id = $4 AND status = 'pending'
	`, claimStatus, now, claimID, listingID)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении заявки: %w", err)
	}

	// Заявка уже рассмотрена другим запросом; откатываем и изменение
	// объявления
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}
