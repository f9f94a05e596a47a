package user

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vkarpenko/shareplate-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API пользователей
func (s *UserService) SetupRoutes(app *fiber.App) {
	// Профиль пользователя по ID
	users := app.Group("/api/users")
	users.Use(middleware.AuthMiddleware(s.jwtService))
	users.Get("/:id", s.GetUser)

	// Маршруты своего профиля
	profile := app.Group("/api/profile")
	profile.Use(middleware.AuthMiddleware(s.jwtService))
	profile.Get("/", s.GetProfile)
	profile.Put("/", s.UpdateProfile)
}
