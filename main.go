package main

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/jasonroy7dct/mailbag-server/config"
	"github.com/jasonroy7dct/mailbag-server/middleware"
	"github.com/jasonroy7dct/mailbag-server/routes"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "MAILBAG: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Open the contacts store
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to open contacts store: %v", err)
	}

	// Error reporting is optional; the server runs fine without a DSN
	if dsn := config.AppConfig.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Serve the browser client
	app.Static("/", config.AppConfig.ClientDir)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Start server
	logger.Printf("🚀 MailBag server open for requests on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
