package main

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/vkarpenko/shareplate-api/internal/claims"
	"github.com/vkarpenko/shareplate-api/internal/config"
	"github.com/vkarpenko/shareplate-api/internal/db"
	"github.com/vkarpenko/shareplate-api/internal/services/auth"
	"github.com/vkarpenko/shareplate-api/internal/services/claim"
	"github.com/vkarpenko/shareplate-api/internal/services/cloudinary"
	"github.com/vkarpenko/shareplate-api/internal/services/follow"
	"github.com/vkarpenko/shareplate-api/internal/services/listing"
	"github.com/vkarpenko/shareplate-api/internal/services/notification"
	"github.com/vkarpenko/shareplate-api/internal/services/user"
	"github.com/vkarpenko/shareplate-api/internal/utils"
	"github.com/vkarpenko/shareplate-api/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SharePlate API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Менеджер WebSocket для пуш-уведомлений
	wsManager := websocket.NewManager()
	defer wsManager.Shutdown()

	// Жизненный цикл заявок поверх PostgreSQL с доставкой уведомлений
	lifecycle := claims.NewLifecycle(claims.NewPGStore(), notification.NewSink(wsManager))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)
	claimService := claim.NewClaimService(cfg, lifecycle)
	listingService := listing.NewListingService(cfg, cloudinaryService)
	notificationService := notification.NewNotificationService(cfg, wsManager)
	followService := follow.NewFollowService(cfg)
	userService := user.NewUserService(cfg)

	// Регистрируем маршруты. Статические пути регистрируются раньше
	// параметрических, порядок здесь значим.
	authService.SetupRoutes(app)
	listingService.SetupPublicRoutes(app)
	claimService.SetupRoutes(app)
	listingService.SetupRoutes(app)
	followService.SetupRoutes(app)
	userService.SetupRoutes(app)
	notificationService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)

	// WebSocket живет на отдельном net/http сервере
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", websocket.Handler(wsManager, utils.NewJWTService(cfg.JWTSecret)))
		log.Printf("✅ WebSocket сервер запущен на порту %s", cfg.WSPort)
		if err := http.ListenAndServe(":"+cfg.WSPort, mux); err != nil {
			log.Printf("❌ Ошибка WebSocket сервера: %v", err)
		}
	}()

	// Запускаем сервер
	log.Printf("✅ SharePlate API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
