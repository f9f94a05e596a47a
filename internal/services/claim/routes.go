package claim

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vkarpenko/shareplate-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API заявок
func (s *ClaimService) SetupRoutes(app *fiber.App) {
	// Маршруты заявок живут в группе объявлений
	listings := app.Group("/api/listings")
	listings.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для подачи заявки на объявление
	listings.Post("/:id/claim", s.RequestClaim)

	// Маршрут для решения владельца по заявке
	listings.Post("/:id/review-claim", s.ReviewClaim)

	// Маршрут для списка ожидающих заявок владельца
	listings.Get("/owner-claims", s.GetOwnerClaims)

	// Группа для истории заявок пользователя
	api := app.Group("/api/claims")
	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Get("/my", s.GetMyClaims)
}
