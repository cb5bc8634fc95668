package main

import (
	"log"
	"mime"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/kanya01/freqspace-backend/config"
	"github.com/kanya01/freqspace-backend/controllers"
	"github.com/kanya01/freqspace-backend/middleware"
	"github.com/kanya01/freqspace-backend/repositories"
	"github.com/kanya01/freqspace-backend/routes"
	"github.com/kanya01/freqspace-backend/services"
	"github.com/kanya01/freqspace-backend/utils"
	"github.com/kanya01/freqspace-backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// Connect to Redis
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Upload configuration and storage bootstrap. Directories must exist
	// before the first request arrives.
	uploadCfg := config.LoadUploadConfig()
	storage := utils.NewLocalStorage(uploadCfg)
	if err := storage.Init(); err != nil {
		log.Fatalf("Failed to prepare upload directories: %v", err)
	}

	prober := utils.NewFFmpegProber(time.Duration(uploadCfg.ProbeTimeoutSeconds) * time.Second)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Wire the content pipeline
	contentRepo := repositories.NewContentRepository(client)
	contentService := services.NewContentService(contentRepo, storage, prober, uploadCfg, wsHub)

	// Initialize controllers
	authController := controllers.NewAuthController(client)
	contentController := controllers.NewContentController(contentService)
	interactionController := controllers.NewInteractionController(contentService)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "FreqSpace Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterContentRoutes(e, contentController, interactionController, wsHub)
	routes.RegisterFileRoutes(e)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
