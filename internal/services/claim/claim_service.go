package claim

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vkarpenko/shareplate-api/internal/claims"
	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/models"
	"github.com/vkarpenko/shareplate-api/internal/utils"
)

// ClaimService представляет HTTP-сервис жизненного цикла заявок
type ClaimService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	lifecycle  *claims.Lifecycle
}

// NewClaimService создает новый экземпляр ClaimService
func NewClaimService(cfg *config.Config, lifecycle *claims.Lifecycle) *ClaimService {
	return &ClaimService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		lifecycle:  lifecycle,
	}
}

// RequestClaim обрабатывает заявку пользователя на получение объявления
func (s *ClaimService) RequestClaim(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	claimID, err := s.lifecycle.RequestClaim(ctx, listingID, requesterID)
	if err != nil {
		return s.errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"claim_record_id": claimID,
		"message":         "Заявка отправлена владельцу объявления",
	})
}

// ReviewClaim обрабатывает решение владельца по заявке
func (s *ClaimService) ReviewClaim(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	callerID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	var requestData struct {
		Decision      string `json:"decision"`
		ClaimRecordID string `json:"claim_record_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Decision != string(claims.DecisionApprove) && requestData.Decision != string(claims.DecisionDecline) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое решение по заявке"})
	}

	claimID, err := uuid.Parse(requestData.ClaimRecordID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заявки"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	decision := claims.Decision(requestData.Decision)
	if err := s.lifecycle.ReviewClaim(ctx, listingID, callerID, claimID, decision); err != nil {
		return s.errorResponse(c, err)
	}

	var message string
	if decision == claims.DecisionApprove {
		message = "Заявка принята, объявление передано получателю"
	} else {
		message = "Заявка отклонена, объявление снова доступно"
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"claim_record_id": claimID,
		"message":         message,
	})
}

// GetOwnerClaims возвращает объявления владельца с ожидающими заявками
func (s *ClaimService) GetOwnerClaims(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT l.id, l.title, l.pending_claim_user_id, l.pending_claim_requested_at,
		       c.id, u.name, u.avatar_url
		FROM listings l
		JOIN claims c ON c.listing_id = l.id AND c.status = 'pending'
		JOIN users u ON u.id = l.pending_claim_user_id
		WHERE l.user_id = $1 AND l.status = 'pending'
		ORDER BY l.pending_claim_requested_at DESC
	`, ownerID)

	if err != nil {
		log.Printf("Ошибка запроса ожидающих заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	result := []fiber.Map{}
	for rows.Next() {
		var listingID, requesterID, claimID uuid.UUID
		var title, requesterName string
		var requestedAt pgtype.Timestamptz
		var avatarURL pgtype.Text

		if err := rows.Scan(&listingID, &title, &requesterID, &requestedAt, &claimID, &requesterName, &avatarURL); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		result = append(result, fiber.Map{
			"id":              listingID,
			"title":           title,
			"claim_record_id": claimID,
			"pending_claim": fiber.Map{
				"user": fiber.Map{
					"id":         requesterID,
					"name":       requesterName,
					"avatar_url": avatarURL.String,
				},
				"requested_at": requestedAt.Time,
			},
		})
	}

	return c.JSON(fiber.Map{
		"listings": result,
		"count":    len(result),
	})
}

// GetMyClaims возвращает историю заявок текущего пользователя
func (s *ClaimService) GetMyClaims(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	status := c.Query("status", "all") // all, pending, approved, rejected

	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
		SELECT c.id, c.listing_id, c.requester_id, c.status, c.claimed_at, c.reviewed_at,
		       l.title, l.status
		FROM claims c
		JOIN listings l ON l.id = c.listing_id
		WHERE c.requester_id = $1
		ORDER BY c.claimed_at DESC
	`
	args := []interface{}{requesterID}

	if status != "all" {
		query = `
			SELECT c.id, c.listing_id, c.requester_id, c.status, c.claimed_at, c.reviewed_at,
			       l.title, l.status
			FROM claims c
			JOIN listings l ON l.id = c.listing_id
			WHERE c.requester_id = $1 AND c.status = $2
			ORDER BY c.claimed_at DESC
		`
		args = append(args, status)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	claimsList := []fiber.Map{}
	for rows.Next() {
		var record models.ClaimRecord
		var listingTitle, listingStatus string

		if err := rows.Scan(
			&record.ID,
			&record.ListingID,
			&record.RequesterID,
			&record.Status,
			&record.ClaimedAt,
			&record.ReviewedAt,
			&listingTitle,
			&listingStatus,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		claimsList = append(claimsList, fiber.Map{
			"id":             record.ID,
			"listing_id":     record.ListingID,
			"status":         record.Status,
			"claimed_at":     record.ClaimedAt,
			"reviewed_at":    record.ReviewedAt,
			"listing_title":  listingTitle,
			"listing_status": listingStatus,
		})
	}

	return c.JSON(fiber.Map{
		"claims": claimsList,
		"count":  len(claimsList),
	})
}

// errorResponse преобразует типизированные ошибки жизненного цикла
// в HTTP-ответы
func (s *ClaimService) errorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, claims.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление, пользователь или заявка не найдены"})
	case errors.Is(err, claims.ErrSelfClaim):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя оставить заявку на собственное объявление"})
	case errors.Is(err, claims.ErrInvalidDecision):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое решение по заявке"})
	case errors.Is(err, claims.ErrClaimMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Заявка не относится к этому объявлению"})
	case errors.Is(err, claims.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Операция доступна только владельцу объявления"})
	case errors.Is(err, claims.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Объявление уже недоступно или заявка рассмотрена"})
	default:
		log.Printf("Ошибка жизненного цикла заявки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}
}
