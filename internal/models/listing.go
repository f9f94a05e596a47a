package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы объявления. Переходы между ними описаны в internal/claims.
const (
	ListingStatusAvailable = "available"
	ListingStatusPending   = "pending"
	ListingStatusClaimed   = "claimed"
	ListingStatusArchived  = "archived"
)

// Категории продуктов
var ValidCategories = map[string]bool{
	"produce": true, "dairy": true, "bakery": true,
	"meat": true, "pantry": true, "other": true,
}

// Listing представляет объявление об отдаче продуктов
type Listing struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Quantity    string         `json:"quantity,omitempty"`
	Location    string         `json:"location,omitempty"`
	Contact     string         `json:"contact,omitempty"`
	ExpiryDate  *time.Time     `json:"expiry_date,omitempty"`
	Status      string         `json:"status"`
	Images      []ListingImage `json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// PendingClaim заполнен тогда и только тогда, когда Status == "pending"
	PendingClaim *PendingClaim `json:"pending_claim,omitempty"`

	// Заполняются после одобрения заявки
	ClaimedBy *uuid.UUID `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// PendingClaim представляет активную заявку, встроенную в объявление.
// Пара status/pending_claim обновляется атомарно и служит
// барьером взаимного исключения для конкурентных заявок.
type PendingClaim struct {
	UserID      uuid.UUID `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// ListingImage представляет изображение объявления
type ListingImage struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	IsMain    bool      `json:"is_main"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
