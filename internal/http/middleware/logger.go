package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"catbox/internal/logging"
)

// LoggerWithWriter logs each HTTP request as one JSON line on w, with
// timestamps rendered in loc (the configured APP_TIMEZONE in main).
// Fields: request_id (from RequestID), method, path, status, latency (ms).
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	log := logging.NewJSON(w, loc, slog.LevelInfo)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		// Use only the path segment (no query string)
		log.Info(c.UserContext(), "http_request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", responseStatus(c, err),
			"latency", float64(time.Since(start).Microseconds())/1000,
		)

		return err
	}
}

// responseStatus is the status the client will see once the app's error
// handler has run.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fiberErr, ok := err.(*fiber.Error); ok {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}
