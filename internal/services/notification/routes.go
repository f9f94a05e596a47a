package notification

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vkarpenko/shareplate-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App) {
	// Группа для API уведомлений
	api := app.Group("/api/notifications")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для получения списка уведомлений
	api.Get("/", s.GetNotifications)

	// Маршрут для количества непрочитанных уведомлений
	api.Get("/unread-count", s.GetUnreadCount)

	// Маршрут для отметки уведомления прочитанным
	api.Post("/:id/read", s.MarkRead)
}
