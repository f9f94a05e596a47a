package claims

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

// Decision представляет решение владельца по заявке
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
)

// Lifecycle оркестрирует переходы состояний объявления и заявки:
// available → pending (RequestClaim) и pending → claimed/available
// (ReviewClaim). Все проверки взаимного исключения делегируются
// хранилищу, уведомления отправляются после фиксации перехода.
type Lifecycle struct {
	store Store
	sink  NotificationSink
}

// NewLifecycle создает новый экземпляр Lifecycle
func NewLifecycle(store Store, sink NotificationSink) *Lifecycle {
	return &Lifecycle{store: store, sink: sink}
}

// RequestClaim создает заявку пользователя requesterID на объявление.
// Возвращает ID созданной записи заявки.
func (l *Lifecycle) RequestClaim(ctx context.Context, listingID, requesterID uuid.UUID) (uuid.UUID, error) {
	listing, err := l.store.GetListing(ctx, listingID)
	if err != nil {
		return uuid.Nil, err
	}

	// Имя заявителя нужно для текста уведомления; отсутствие
	// пользователя прерывает операцию
	requester, err := l.store.GetUser(ctx, requesterID)
	if err != nil {
		return uuid.Nil, err
	}

	// Заявка на собственное объявление запрещена независимо от статуса
	if listing.UserID == requesterID {
		return uuid.Nil, ErrSelfClaim
	}

	// Предварительная проверка; окончательное слово за условной
	// записью в BeginClaim
	if listing.Status != models.ListingStatusAvailable {
		return uuid.Nil, ErrConflict
	}

	claimID := uuid.New()
	now := time.Now().UTC()

	if err := l.store.BeginClaim(ctx, listingID, claimID, requesterID, now); err != nil {
		return uuid.Nil, err
	}

	// Уведомляем владельца после фиксации перехода
	l.notify(ctx, &models.Notification{
		UserID:  listing.UserID,
		Type:    models.NotificationTypeClaim,
		Message: fmt.Sprintf("%s хочет забрать ваш товар: %s", requester.Name, listing.Title),
		Link:    chatLink(requesterID, listing.UserID),
	})

	return claimID, nil
}

// ReviewClaim применяет решение владельца callerID по заявке claimID
// на объявление listingID.
func (l *Lifecycle) ReviewClaim(ctx context.Context, listingID, callerID, claimID uuid.UUID, decision Decision) error {
	if decision != DecisionApprove && decision != DecisionDecline {
		return ErrInvalidDecision
	}

	listing, err := l.store.GetListing(ctx, listingID)
	if err != nil {
		return err
	}

	if listing.UserID != callerID {
		return ErrNotOwner
	}

	if listing.Status != models.ListingStatusPending || listing.PendingClaim == nil {
		return ErrConflict
	}

	claim, err := l.store.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}

	if claim.ListingID != listingID {
		return ErrClaimMismatch
	}

	if claim.Status != models.ClaimStatusPending {
		return ErrConflict
	}

	requesterID := listing.PendingClaim.UserID
	approve := decision == DecisionApprove
	now := time.Now().UTC()

	if err := l.store.FinalizeClaim(ctx, listingID, claimID, requesterID, approve, now); err != nil {
		return err
	}

	// Уведомляем заявителя после фиксации перехода
	if approve {
		l.notify(ctx, &models.Notification{
			UserID:  requesterID,
			Type:    models.NotificationTypeClaimAccepted,
			Message: fmt.Sprintf("Ваша заявка на '%s' принята!", listing.Title),
			Link:    "/product/" + listingID.String(),
		})
	} else {
		l.notify(ctx, &models.Notification{
			UserID:  requesterID,
			Type:    models.NotificationTypeClaimDeclined,
			Message: fmt.Sprintf("Ваша заявка на '%s' отклонена.", listing.Title),
			Link:    "/product/" + listingID.String(),
		})
	}

	return nil
}

// notify отправляет уведомление. Ошибка доставки логируется и не
// влияет на результат операции: переход уже зафиксирован.
func (l *Lifecycle) notify(ctx context.Context, n *models.Notification) {
	if err := l.sink.Notify(ctx, n); err != nil {
		log.Printf("Ошибка отправки уведомления пользователю %s: %v", n.UserID, err)
	}
}

// chatLink строит ссылку на диалог между двумя пользователями
func chatLink(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return "/messages/" + strings.Join(ids, "_")
}
