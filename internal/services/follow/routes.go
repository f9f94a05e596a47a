package follow

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vkarpenko/shareplate-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API подписок
func (s *FollowService) SetupRoutes(app *fiber.App) {
	// Группа для API подписок
	api := app.Group("/api/users")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для списка своих подписок
	api.Get("/following", s.GetFollowing)

	// Маршрут для подписки на пользователя
	api.Post("/:id/follow", s.Follow)

	// Маршрут для отмены подписки
	api.Delete("/:id/follow", s.Unfollow)
}
