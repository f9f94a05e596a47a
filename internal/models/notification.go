package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений жизненного цикла заявок
const (
	NotificationTypeClaim         = "claim"
	NotificationTypeClaimAccepted = "claim-accepted"
	NotificationTypeClaimDeclined = "claim-declined"
)

// Notification представляет уведомление пользователя.
// Создается жизненным циклом заявок, никогда не изменяется
// (кроме флага прочтения).
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
