package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"datafarm/internal/config"
	"datafarm/internal/handlers"
	"datafarm/internal/mailer"
	"datafarm/internal/repositories"
	"datafarm/internal/schema"
	"datafarm/internal/services"
	"datafarm/internal/storage"
	"datafarm/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Resolve the table namespace and users primary key once; the binding is
	// injected into every repository. A failure here is fatal.
	resolver := schema.NewResolver(cfg.DBSchema)
	binding, err := resolver.Resolve(db)
	if err != nil {
		log.Fatalf("Failed to resolve schema binding: %v", err)
	}
	log.Printf("Schema binding resolved: schema=%q users_pk=%q", binding.Schema, binding.UsersPK)

	// --- RabbitMQ ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	// --- Mailer and image store ---
	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db, binding)
	tokenRepo := repositories.NewGORMEmailTokenRepository(db, binding)
	locationRepo := repositories.NewGORMLocationRepository(db, binding)
	produceLogRepo := repositories.NewGORMProduceLogRepository(db, binding)

	// --- Services ---
	otpService := services.NewOTPService(tokenRepo)
	signupService := services.NewSignupService(db, userRepo, locationRepo, otpService, sender, images, mqClient)
	produceLogService := services.NewProduceLogService(produceLogRepo, mqClient)
	cropService := services.NewCropService(cfg.WeatherAPIKey, cfg.WeatherBaseURL)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(signupService)
	produceLogHandler := handlers.NewProduceLogHandler(produceLogService)
	cropHandler := handlers.NewCropHandler(cropService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	authHandler.RegisterRoutes(app)

	api := app.Group("/api")
	produceLogHandler.RegisterRoutes(api)
	cropHandler.RegisterRoutes(api)

	// --- Health check ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Event consumer ---
	// Log-only consumer for the service's own events; downstream systems
	// attach their own consumers to the same queue.
	go func() {
		err := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
			log.Printf("Received event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			return nil
		})
		if err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}()

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
