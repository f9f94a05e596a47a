package user

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/utils"
)

// UserService представляет сервис для работы с профилями пользователей
type UserService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUserService создает новый экземпляр UserService
func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetProfile возвращает профиль текущего пользователя
func (s *UserService) GetProfile(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	user, err := db.GetUserByID(userUUID)
	if err != nil {
		if db.IsNoRows(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"bio":        user.Bio,
		"avatar_url": user.AvatarURL,
		"location":   user.Location,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
}

// UpdateProfile обновляет профиль текущего пользователя
func (s *UserService) UpdateProfile(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
		Location  string `json:"location"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	requestData.Name = strings.TrimSpace(requestData.Name)
	if requestData.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя не может быть пустым"})
	}

	user, err := db.UpdateUserProfile(userUUID, requestData.Name, requestData.Bio, requestData.AvatarURL, requestData.Location)
	if err != nil {
		log.Printf("Ошибка обновления профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления профиля"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"bio":        user.Bio,
			"avatar_url": user.AvatarURL,
			"location":   user.Location,
			"updated_at": user.UpdatedAt,
		},
	})
}

// GetUser возвращает публичный профиль пользователя по ID
func (s *UserService) GetUser(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	user, err := db.GetUserByID(userUUID)
	if err != nil {
		if db.IsNoRows(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	// Публичный профиль без email
	return c.JSON(fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"bio":        user.Bio,
		"avatar_url": user.AvatarURL,
		"location":   user.Location,
		"created_at": user.CreatedAt,
	})
}
