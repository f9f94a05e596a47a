package follow

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/utils"
)

// FollowService представляет сервис подписок на пользователей
type FollowService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewFollowService создает новый экземпляр FollowService
func NewFollowService(cfg *config.Config) *FollowService {
	return &FollowService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// Follow подписывает текущего пользователя на другого пользователя
func (s *FollowService) Follow(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	targetUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	if userUUID == targetUUID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя подписаться на самого себя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, существует ли пользователь
	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, targetUUID).Scan(&exists)

	if err != nil {
		log.Printf("Ошибка проверки существования пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки пользователя"})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	// Проверяем, нет ли уже подписки
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
	`, userUUID, targetUUID).Scan(&exists)

	if err != nil {
		log.Printf("Ошибка проверки подписки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки подписки"})
	}

	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вы уже подписаны на этого пользователя"})
	}

	// Создаем подписку
	followID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO follows (id, follower_id, followee_id)
		VALUES ($1, $2, $3)
	`, followID, userUUID, targetUUID)

	if err != nil {
		log.Printf("Ошибка создания подписки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания подписки"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      followID,
		"message": "Подписка оформлена",
	})
}

// Unfollow отписывает текущего пользователя от другого пользователя
func (s *FollowService) Unfollow(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	targetUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
	`, userUUID, targetUUID)

	if err != nil {
		log.Printf("Ошибка удаления подписки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления подписки"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Подписка не найдена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Подписка отменена",
	})
}

// GetFollowing возвращает список пользователей, на которых подписан текущий
func (s *FollowService) GetFollowing(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Параметры пагинации
	limit := 20 // По умолчанию показываем 20 пользователей
	offsetStr := c.Query("offset", "0")
	offset, _ := strconv.Atoi(offsetStr)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT u.id, u.name, u.bio, u.avatar_url, u.location, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userUUID, limit, offset)

	if err != nil {
		log.Printf("Ошибка запроса подписок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения подписок"})
	}
	defer rows.Close()

	following := []fiber.Map{}
	for rows.Next() {
		var id uuid.UUID
		var name string
		var bio, avatarURL, location pgtype.Text
		var followedAt pgtype.Timestamptz

		if err := rows.Scan(&id, &name, &bio, &avatarURL, &location, &followedAt); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		following = append(following, fiber.Map{
			"id":          id,
			"name":        name,
			"bio":         bio.String,
			"avatar_url":  avatarURL.String,
			"location":    location.String,
			"followed_at": followedAt.Time,
		})
	}

	// Получаем общее количество подписок для пагинации
	var total int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM follows WHERE follower_id = $1
	`, userUUID).Scan(&total)

	if err != nil {
		log.Printf("Ошибка подсчета подписок: %v", err)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(fiber.Map{
		"following": following,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}
