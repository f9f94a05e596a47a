package claim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/shareplate-api/internal/claims"
	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/models"
)

type dropSink struct{}

func (s *dropSink) Notify(ctx context.Context, n *models.Notification) error { return nil }

// testApp собирает Fiber-приложение поверх MemoryStore с подменой
// авторизации: userID берется из заголовка X-Test-User
func testApp(t *testing.T) (*fiber.App, *claims.MemoryStore) {
	t.Helper()

	store := claims.NewMemoryStore()
	lifecycle := claims.NewLifecycle(store, &dropSink{})
	svc := NewClaimService(&config.Config{JWTSecret: "test-secret"}, lifecycle)

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("userID", c.Get("X-Test-User"))
		return c.Next()
	})
	app.Post("/api/listings/:id/claim", svc.RequestClaim)
	app.Post("/api/listings/:id/review-claim", svc.ReviewClaim)

	return app, store
}

func seedListing(store *claims.MemoryStore) (owner, requester, listingID uuid.UUID) {
	owner = uuid.New()
	requester = uuid.New()
	listingID = uuid.New()

	store.AddUser(&models.User{ID: owner, Name: "Ольга"})
	store.AddUser(&models.User{ID: requester, Name: "Марат"})
	store.AddListing(&models.Listing{
		ID:       listingID,
		UserID:   owner,
		Title:    "Домашний хлеб",
		Category: "bakery",
		Status:   models.ListingStatusAvailable,
	})
	return owner, requester, listingID
}

func doJSON(t *testing.T, app *fiber.App, method, url, asUser string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", asUser)

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &parsed))
	}
	return resp, parsed
}

func TestRequestClaim_HTTPStatuses(t *testing.T) {
	t.Parallel()

	app, store := testApp(t)
	owner, requester, listingID := seedListing(store)

	claimURL := fmt.Sprintf("/api/listings/%s/claim", listingID)

	// Без авторизации
	resp, _ := doJSON(t, app, "POST", claimURL, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Несуществующее объявление
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/listings/%s/claim", uuid.New()), requester.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Самозаявка
	resp, _ = doJSON(t, app, "POST", claimURL, owner.String(), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Успешная заявка
	resp, body := doJSON(t, app, "POST", claimURL, requester.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["claim_record_id"])

	// Повторная заявка на уже ожидающее объявление
	resp, _ = doJSON(t, app, "POST", claimURL, requester.String(), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestReviewClaim_HTTPStatuses(t *testing.T) {
	t.Parallel()

	app, store := testApp(t)
	owner, requester, listingID := seedListing(store)

	claimURL := fmt.Sprintf("/api/listings/%s/claim", listingID)
	reviewURL := fmt.Sprintf("/api/listings/%s/review-claim", listingID)

	_, body := doJSON(t, app, "POST", claimURL, requester.String(), nil)
	claimID, ok := body["claim_record_id"].(string)
	require.True(t, ok)

	// Недопустимое решение
	resp, _ := doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "maybe", "claim_record_id": claimID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Решение принимает только владелец
	stranger := uuid.New()
	store.AddUser(&models.User{ID: stranger, Name: "Посторонний"})
	resp, _ = doJSON(t, app, "POST", reviewURL, stranger.String(), fiber.Map{
		"decision": "approve", "claim_record_id": claimID,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Несуществующая заявка
	resp, _ = doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "approve", "claim_record_id": uuid.New().String(),
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Заявка от другого объявления того же владельца
	otherListing := uuid.New()
	store.AddListing(&models.Listing{
		ID:       otherListing,
		UserID:   owner,
		Title:    "Овощи с дачи",
		Category: "produce",
		Status:   models.ListingStatusAvailable,
	})
	_, otherBody := doJSON(t, app, "POST", fmt.Sprintf("/api/listings/%s/claim", otherListing), requester.String(), nil)
	resp, _ = doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "approve", "claim_record_id": otherBody["claim_record_id"],
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Успешное одобрение
	resp, _ = doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "approve", "claim_record_id": claimID,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	listing, err := store.GetListing(context.Background(), listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClaimed, listing.Status)
	assert.Nil(t, listing.PendingClaim)

	// Повторное решение по рассмотренной заявке
	resp, _ = doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "decline", "claim_record_id": claimID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestReviewClaim_DeclineReopensListing(t *testing.T) {
	t.Parallel()

	app, store := testApp(t)
	owner, requester, listingID := seedListing(store)

	claimURL := fmt.Sprintf("/api/listings/%s/claim", listingID)
	reviewURL := fmt.Sprintf("/api/listings/%s/review-claim", listingID)

	_, body := doJSON(t, app, "POST", claimURL, requester.String(), nil)

	resp, _ := doJSON(t, app, "POST", reviewURL, owner.String(), fiber.Map{
		"decision": "decline", "claim_record_id": body["claim_record_id"],
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	listing, err := store.GetListing(context.Background(), listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusAvailable, listing.Status)
	assert.Nil(t, listing.PendingClaim)

	// Объявление сразу доступно для новой заявки
	other := uuid.New()
	store.AddUser(&models.User{ID: other, Name: "Айгуль"})
	resp, _ = doJSON(t, app, "POST", claimURL, other.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
