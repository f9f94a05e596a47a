package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы заявки. Заявка создается в статусе pending и ровно один раз
// переводится в терминальный статус approved или rejected.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ClaimRecord представляет заявку пользователя на получение объявления.
// Записи никогда не удаляются и служат историей передач,
// включая отклоненные заявки.
type ClaimRecord struct {
	ID          uuid.UUID  `json:"id"`
	ListingID   uuid.UUID  `json:"listing_id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	Status      string     `json:"status"`
	ClaimedAt   time.Time  `json:"claimed_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	// Дополнительные поля для API
	Listing   *Listing `json:"listing,omitempty"`
	Requester *User    `json:"requester,omitempty"`
}
