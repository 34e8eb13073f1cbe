package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const msgInternal = "Internal Server Error"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorHandler is the single place errors become responses. A *fiber.Error
// keeps its code and message; anything else is logged and reported as a
// bare 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := msgInternal

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			if e.Message != "" {
				msg = e.Message
			}
		} else {
			log.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("request_id", c.Locals("requestid")),
				slog.Any("error", err),
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			Status:  "error",
			Message: msg,
		})
	}
}
