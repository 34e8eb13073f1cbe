package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Options tunes SetupMiddleware.
type Options struct {
	AllowOrigins string
	AccessLog    bool
}

// SetupMiddleware configures the common middleware stack.
func SetupMiddleware(app *fiber.App, opts Options) {
	app.Use(requestid.New())

	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${method} ${path} - ${ip} - ${latency} - ${locals:requestid}\n",
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	// Panics are turned into errors and reach the error handler.
	app.Use(recover.New())

	app.Use(helmet.New())

	allowOrigins := opts.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + APIKeyHeader,
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}))
}
