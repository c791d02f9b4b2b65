package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"github.com/jasonroy7dct/mailbag-server/config"
	"github.com/jasonroy7dct/mailbag-server/controllers"
	"github.com/jasonroy7dct/mailbag-server/workers"
)

// SetupRoutes wires the REST surface to the three backend workers. Every
// request opens its own short-lived connection to the mail store; nothing is
// shared across requests.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	mailLogger := log.New(os.Stdout, "MAIL: ", log.Ldate|log.Ltime|log.Lshortfile)
	contactLogger := log.New(os.Stdout, "CONTACTS: ", log.Ldate|log.Ltime|log.Lshortfile)

	imapWorker := workers.NewIMAPWorker(
		config.AppConfig.IMAP,
		config.AppConfig.TrashMailbox,
		config.AppConfig.UserEmail,
	)
	smtpWorker := workers.NewSMTPWorker(config.AppConfig.SMTP)
	contactWorker := workers.NewContactWorker(db)

	mailController := controllers.NewMailController(imapWorker, smtpWorker, mailLogger)
	contactController := controllers.NewContactController(contactWorker, contactLogger)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Mailbox and message routes
	api.Get("/mailboxes", mailController.ListMailboxes)
	api.Get("/mailboxes/:mailbox", mailController.ListMessages)
	api.Get("/messages/:mailbox/:id", mailController.GetMessage)
	api.Delete("/messages/:mailbox/:id", mailController.DeleteMessage)
	api.Post("/messages", mailController.SendMessage)

	// Contact routes
	api.Get("/contacts", contactController.ListContacts)
	api.Post("/contacts", contactController.AddContact)
	api.Put("/contacts", contactController.UpdateContact)
	api.Delete("/contacts/:id", contactController.DeleteContact)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
}
