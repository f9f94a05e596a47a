package listing

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/models"
	"github.com/vkarpenko/shareplate-api/internal/services/cloudinary"
	"github.com/vkarpenko/shareplate-api/internal/utils"
)

// RequestImage представляет структуру изображения в запросе создания объявления
type RequestImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	IsMain   bool   `json:"is_main"`
}

// ListingService представляет сервис для работы с объявлениями
type ListingService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	cloudinary *cloudinary.CloudinaryService
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(cfg *config.Config, cloudinaryService *cloudinary.CloudinaryService) *ListingService {
	return &ListingService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		cloudinary: cloudinaryService,
	}
}

// CreateListing обрабатывает создание нового объявления
func (s *ListingService) CreateListing(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Извлекаем данные из запроса
	var requestData struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Quantity    string         `json:"quantity"`
		Location    string         `json:"location"`
		Contact     string         `json:"contact"`
		ExpiryDate  *time.Time     `json:"expiry_date"`
		Images      []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Валидация обязательных полей
	requestData.Title = strings.TrimSpace(requestData.Title)
	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}

	if requestData.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Описание обязательно"})
	}

	if !models.ValidCategories[requestData.Category] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимая категория"})
	}

	if requestData.ExpiryDate != nil && requestData.ExpiryDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Срок годности не может быть в прошлом"})
	}

	// Создаем ID для нового объявления
	listingID := uuid.New()

	// Начинаем транзакцию
	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Вставляем объявление
	_, err = tx.Exec(ctx, `
		INSERT INTO listings (id, user_id, title, description, category, quantity, location, contact, expiry_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'available')
	`, listingID, userUUID, requestData.Title, requestData.Description, requestData.Category,
		requestData.Quantity, requestData.Location, requestData.Contact, requestData.ExpiryDate)

	if err != nil {
		log.Printf("Ошибка вставки объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения объявления"})
	}

	// Вставляем изображения, если они есть
	for i, img := range requestData.Images {
		isMain := i == 0 // Первое изображение - основное

		_, err = tx.Exec(ctx, `
			INSERT INTO listing_images (listing_id, url, public_id, is_main, position)
			VALUES ($1, $2, $3, $4, $5)
		`, listingID, img.URL, img.PublicID, isMain, i)

		if err != nil {
			log.Printf("Ошибка вставки изображения: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения изображений"})
		}
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"listing_id": listingID,
		"message":    "Объявление успешно создано",
	})
}

// GetMyListings возвращает список объявлений текущего пользователя
func (s *ListingService) GetMyListings(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Параметры фильтрации и пагинации
	status := c.Query("status", "all") // all, available, pending, claimed, archived
	limit := 20                        // По умолчанию показываем 20 объявлений
	offsetStr := c.Query("offset", "0")
	offset, _ := strconv.Atoi(offsetStr)

	ctx, cancel := db.GetContext()
	defer cancel()

	var rows pgx.Rows
	var queryErr error

	if status == "all" {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, user_id, title, description, category, quantity, location, contact, expiry_date, status, created_at, updated_at
			FROM listings
			WHERE user_id = $1
			ORDER BY updated_at DESC
			LIMIT $2 OFFSET $3
		`, userUUID, limit, offset)
	} else {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, user_id, title, description, category, quantity, location, contact, expiry_date, status, created_at, updated_at
			FROM listings
			WHERE user_id = $1 AND status = $2
			ORDER BY updated_at DESC
			LIMIT $3 OFFSET $4
		`, userUUID, status, limit, offset)
	}

	if queryErr != nil {
		log.Printf("Ошибка запроса объявлений: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	defer rows.Close()

	listings := s.scanListings(ctx, rows)

	// Получаем общее количество объявлений для пагинации
	var total int
	var countErr error

	if status == "all" {
		countErr = db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM listings WHERE user_id = $1
		`, userUUID).Scan(&total)
	} else {
		countErr = db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM listings WHERE user_id = $1 AND status = $2
		`, userUUID, status).Scan(&total)
	}

	if countErr != nil {
		log.Printf("Ошибка подсчета объявлений: %v", countErr)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetListing возвращает детальную информацию об объявлении
func (s *ListingService) GetListing(c fiber.Ctx) error {
	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var listing models.Listing
	var quantity, location, contact pgtype.Text
	var expiryDate, claimedAt *time.Time
	var claimedBy, pendingUserID *uuid.UUID
	var pendingRequestedAt *time.Time

	err = db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, category, quantity, location, contact, expiry_date,
		       status, pending_claim_user_id, pending_claim_requested_at, claimed_by, claimed_at,
		       created_at, updated_at
		FROM listings
		WHERE id = $1
	`, listingUUID).Scan(
		&listing.ID,
		&listing.UserID,
		&listing.Title,
		&listing.Description,
		&listing.Category,
		&quantity,
		&location,
		&contact,
		&expiryDate,
		&listing.Status,
		&pendingUserID,
		&pendingRequestedAt,
		&claimedBy,
		&claimedAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	listing.Quantity = quantity.String
	listing.Location = location.String
	listing.Contact = contact.String
	listing.ExpiryDate = expiryDate
	listing.ClaimedBy = claimedBy
	listing.ClaimedAt = claimedAt
	if pendingUserID != nil && pendingRequestedAt != nil {
		listing.PendingClaim = &models.PendingClaim{
			UserID:      *pendingUserID,
			RequestedAt: *pendingRequestedAt,
		}
	}

	listing.Images = s.loadImages(ctx, listingUUID)

	// Получаем информацию о владельце
	var owner models.User
	var avatarURL pgtype.Text
	err = db.Pool.QueryRow(ctx, `
		SELECT id, name, avatar_url FROM users WHERE id = $1
	`, listing.UserID).Scan(&owner.ID, &owner.Name, &avatarURL)

	if err != nil && err != pgx.ErrNoRows {
		log.Printf("Ошибка получения данных пользователя: %v", err)
	}
	owner.AvatarURL = avatarURL.String

	userIDStr, _ := c.Locals("userID").(string)
	callerID, _ := uuid.Parse(userIDStr)

	return c.JSON(fiber.Map{
		"listing": listing,
		"user": fiber.Map{
			"id":         owner.ID,
			"name":       owner.Name,
			"avatar_url": owner.AvatarURL,
		},
		"is_owner": listing.UserID == callerID,
	})
}

// UpdateListing обновляет существующее объявление
func (s *ListingService) UpdateListing(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)
	if userIDStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Извлекаем данные из запроса
	var requestData struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Quantity    string         `json:"quantity"`
		Location    string         `json:"location"`
		Contact     string         `json:"contact"`
		ExpiryDate  *time.Time     `json:"expiry_date"`
		Images      []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	requestData.Title = strings.TrimSpace(requestData.Title)
	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}

	if !models.ValidCategories[requestData.Category] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимая категория"})
	}

	// Проверяем, что объявление существует и принадлежит пользователю
	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, "SELECT user_id, status FROM listings WHERE id = $1", listingUUID).Scan(&ownerID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к редактированию этого объявления"})
	}

	// Объявление с ожидающей заявкой нельзя редактировать, пока
	// владелец не примет решение
	if status == models.ListingStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Сначала рассмотрите ожидающую заявку"})
	}

	// Начинаем транзакцию
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Обновляем основную информацию объявления с повторной проверкой
	// статуса, чтобы не перезаписать параллельно созданную заявку
	tag, err := tx.Exec(ctx, `
		UPDATE listings
		SET title = $1, description = $2, category = $3, quantity = $4, location = $5, contact = $6, expiry_date = $7, updated_at = NOW()
		WHERE id = $8 AND status != 'pending'
	`, requestData.Title, requestData.Description, requestData.Category, requestData.Quantity,
		requestData.Location, requestData.Contact, requestData.ExpiryDate, listingUUID)

	if err != nil {
		log.Printf("Ошибка обновления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления объявления"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Сначала рассмотрите ожидающую заявку"})
	}

	// Если есть изображения, обновляем их
	if len(requestData.Images) > 0 {
		// Сначала удаляем все существующие изображения
		_, err = tx.Exec(ctx, "DELETE FROM listing_images WHERE listing_id = $1", listingUUID)
		if err != nil {
			log.Printf("Ошибка удаления старых изображений: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления изображений"})
		}

		// Добавляем новые изображения
		for i, img := range requestData.Images {
			isMain := i == 0

			_, err = tx.Exec(ctx, `
				INSERT INTO listing_images (listing_id, url, public_id, is_main, position)
				VALUES ($1, $2, $3, $4, $5)
			`, listingUUID, img.URL, img.PublicID, isMain, i)

			if err != nil {
				log.Printf("Ошибка вставки изображения: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения изображений"})
			}
		}
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"listing_id": listingUUID,
		"message":    "Объявление успешно обновлено",
	})
}

// ArchiveListing снимает объявление с публикации
func (s *ListingService) ArchiveListing(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)
	if userIDStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT user_id FROM listings WHERE id = $1", listingUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому объявлению"})
	}

	// Объявление с ожидающей заявкой архивировать нельзя
	tag, err := db.Pool.Exec(ctx, `
		UPDATE listings
		SET status = 'archived', updated_at = NOW()
		WHERE id = $1 AND status IN ('available', 'claimed')
	`, listingUUID)

	if err != nil {
		log.Printf("Ошибка архивирования объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка архивирования объявления"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Сначала рассмотрите ожидающую заявку"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление перемещено в архив",
	})
}

// DeleteListing удаляет объявление
func (s *ListingService) DeleteListing(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)
	if userIDStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Проверяем, что объявление существует и принадлежит пользователю
	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT user_id FROM listings WHERE id = $1", listingUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к удалению этого объявления"})
	}

	// Собираем public_id изображений для удаления из Cloudinary
	var publicIDs []string
	imgRows, err := db.Pool.Query(ctx, `
		SELECT public_id FROM listing_images WHERE listing_id = $1 AND public_id != ''
	`, listingUUID)
	if err != nil {
		log.Printf("Ошибка запроса изображений: %v", err)
	} else {
		for imgRows.Next() {
			var publicID string
			if err := imgRows.Scan(&publicID); err != nil {
				continue
			}
			publicIDs = append(publicIDs, publicID)
		}
		imgRows.Close()
	}

	// Начинаем транзакцию
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Сначала удаляем связанные изображения
	_, err = tx.Exec(ctx, "DELETE FROM listing_images WHERE listing_id = $1", listingUUID)
	if err != nil {
		log.Printf("Ошибка удаления изображений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	// Удаляем само объявление
	_, err = tx.Exec(ctx, "DELETE FROM listings WHERE id = $1", listingUUID)
	if err != nil {
		log.Printf("Ошибка удаления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	// Удаляем файлы из Cloudinary, ошибки не блокируют ответ
	for _, publicID := range publicIDs {
		if err := s.cloudinary.DestroyAsset(ctx, publicID); err != nil {
			log.Printf("Ошибка удаления файла из Cloudinary: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление успешно удалено",
	})
}

// GetPublicListings возвращает список опубликованных объявлений с пагинацией
func (s *ListingService) GetPublicListings(c fiber.Ctx) error {
	// Параметры фильтрации и пагинации
	category := c.Query("category", "")
	limit := 20 // По умолчанию показываем 20 объявлений
	offsetStr := c.Query("offset", "0")
	offset, _ := strconv.Atoi(offsetStr)

	ctx, cancel := db.GetContext()
	defer cancel()

	var rows pgx.Rows
	var queryErr error

	// Объявления с ожидающей заявкой остаются видимыми в ленте
	if category == "" {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, user_id, title, description, category, quantity, location, contact, expiry_date, status, created_at, updated_at
			FROM listings
			WHERE status IN ('available', 'pending')
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	} else {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, user_id, title, description, category, quantity, location, contact, expiry_date, status, created_at, updated_at
			FROM listings
			WHERE status IN ('available', 'pending') AND category = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, category, limit, offset)
	}

	if queryErr != nil {
		log.Printf("Ошибка запроса объявлений: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	defer rows.Close()

	listings := s.scanListings(ctx, rows)

	// Получаем общее количество объявлений для пагинации
	var total int
	var countErr error

	if category == "" {
		countErr = db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM listings WHERE status IN ('available', 'pending')
		`).Scan(&total)
	} else {
		countErr = db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM listings WHERE status IN ('available', 'pending') AND category = $1
		`, category).Scan(&total)
	}

	if countErr != nil {
		log.Printf("Ошибка подсчета объявлений: %v", countErr)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// scanListings читает строки объявлений и подгружает их изображения
func (s *ListingService) scanListings(ctx context.Context, rows pgx.Rows) []models.Listing {
	var listings []models.Listing

	for rows.Next() {
		var listing models.Listing
		var quantity, location, contact pgtype.Text
		var expiryDate *time.Time

		if err := rows.Scan(
			&listing.ID,
			&listing.UserID,
			&listing.Title,
			&listing.Description,
			&listing.Category,
			&quantity,
			&location,
			&contact,
			&expiryDate,
			&listing.Status,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		listing.Quantity = quantity.String
		listing.Location = location.String
		listing.Contact = contact.String
		listing.ExpiryDate = expiryDate

		listing.Images = s.loadImages(ctx, listing.ID)
		listings = append(listings, listing)
	}

	return listings
}

// loadImages загружает изображения объявления
func (s *ListingService) loadImages(ctx context.Context, listingID uuid.UUID) []models.ListingImage {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, listing_id, url, public_id, is_main, position, created_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY position ASC
	`, listingID)

	if err != nil {
		log.Printf("Ошибка запроса изображений: %v", err)
		return nil
	}
	defer rows.Close()

	var images []models.ListingImage
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(
			&img.ID,
			&img.ListingID,
			&img.URL,
			&img.PublicID,
			&img.IsMain,
			&img.Position,
			&img.CreatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования изображения: %v", err)
			continue
		}
		images = append(images, img)
	}

	return images
}
