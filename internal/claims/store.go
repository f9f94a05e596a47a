package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

// Store описывает хранилище, с которым работает жизненный цикл заявок.
// Обе операции записи атомарны: частичное применение невозможно,
// проигравший гонку вызов получает ErrConflict.
type Store interface {
	// GetListing возвращает объявление или ErrNotFound
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)

	// GetUser возвращает пользователя или ErrNotFound
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetClaim возвращает заявку или ErrNotFound
	GetClaim(ctx context.Context, claimID uuid.UUID) (*models.ClaimRecord, error)

	// BeginClaim единой единицей работы переводит объявление
	// available → pending, проставляет встроенную заявку и создает
	// ClaimRecord в статусе pending. Сравнение статуса и запись
	// выполняются атомарно: из конкурентных вызовов для одного
	// объявления успешен ровно один, остальные получают ErrConflict.
	BeginClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, now time.Time) error

	// FinalizeClaim единой единицей работы применяет решение владельца.
	// Условия: объявление в статусе pending со встроенной заявкой
	// requesterID, заявка claimID все еще pending. При approve объявление
	// переходит в claimed (с заполнением claimed_by/claimed_at), при
	// decline — обратно в available; встроенная заявка очищается в обоих
	// случаях, ClaimRecord получает терминальный статус. Нарушение любого
	// условия — ErrConflict без каких-либо изменений.
	FinalizeClaim(ctx context.Context, listingID, claimID, requesterID uuid.UUID, approve bool, now time.Time) error
}

// NotificationSink принимает уведомления, порождаемые переходами.
// Доставка не входит в границу согласованности перехода: ошибка
// доставки логируется и не откатывает уже зафиксированное состояние.
type NotificationSink interface {
	Notify(ctx context.Context, n *models.Notification) error
}
