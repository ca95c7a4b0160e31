package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/tair/storefront/pkg/logger"
)

// StructuredLoggingMiddleware logs every request with trace and request ids
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)

		logger.Debug(c.UserContext()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("request_id", requestID).
			Msg("Storefront request started")

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		logEvent := logger.Info(c.UserContext())
		if statusCode >= fiber.StatusInternalServerError {
			logEvent = logger.Error(c.UserContext())
		} else if statusCode >= fiber.StatusBadRequest {
			logEvent = logger.Warn(c.UserContext())
		}

		logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", statusCode).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Int("response_size", len(c.Response().Body())).
			Str("request_id", requestID).
			Msg("Storefront request completed")

		if err != nil {
			logger.Error(c.UserContext()).
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID).
				Msg("Storefront request error")
		}

		return err
	}
}
