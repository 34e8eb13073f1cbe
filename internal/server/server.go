package server

import (
	"log/slog"
	"time"

	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

const welcomeText = "Welcome to the Product API! Use /api/products to get started."

// Options holds what New needs to assemble the app.
type Options struct {
	Service    *services.ProductService
	APIKey     middleware.APIKey
	Logger     *slog.Logger
	StoreName  string // reported by /health
	Middleware middleware.Options
}

// New builds the Fiber app: middleware, error handler, and routes.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Product API",
		ErrorHandler: middleware.ErrorHandler(opts.Logger),
	})

	middleware.SetupMiddleware(app, opts.Middleware)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(welcomeText)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  opts.StoreName,
		})
	})

	api := app.Group("/api")
	handlers.NewProductHandler(opts.Service).RegisterRoutes(api, middleware.APIKeyRequired(opts.APIKey))

	return app
}
