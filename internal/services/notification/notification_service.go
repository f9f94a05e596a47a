package notification

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/models"
	"github.com/vkarpenko/shareplate-api/internal/utils"
	"github.com/vkarpenko/shareplate-api/internal/websocket"
)

// NotificationService представляет сервис для работы с уведомлениями
type NotificationService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	wsManager  *websocket.Manager
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(cfg *config.Config, wsManager *websocket.Manager) *NotificationService {
	return &NotificationService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		wsManager:  wsManager,
	}
}

// GetNotifications возвращает последние уведомления пользователя
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	notifications, err := db.ListNotifications(ctx, userUUID, 50)
	if err != nil {
		log.Printf("Ошибка запроса уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения уведомлений"})
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkRead помечает уведомление прочитанным
func (s *NotificationService) MarkRead(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	notificationUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID уведомления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	updated, err := db.MarkNotificationRead(ctx, userUUID, notificationUUID)
	if err != nil {
		log.Printf("Ошибка обновления уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления уведомления"})
	}

	if !updated {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Уведомление не найдено"})
	}

	// Пушим обновленный счетчик непрочитанных
	if unread, err := db.CountUnreadNotifications(ctx, userUUID); err == nil {
		s.wsManager.BroadcastUnreadCount(userID, unread)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetUnreadCount возвращает количество непрочитанных уведомлений
func (s *NotificationService) GetUnreadCount(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	count, err := db.CountUnreadNotifications(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка подсчета уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка подсчета уведомлений"})
	}

	return c.JSON(fiber.Map{"count": count})
}
