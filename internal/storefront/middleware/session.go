package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/pkg/logger"
)

const sessionKey = "session_id"

// SessionConfig configures the session cookie
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware makes sure every browser carries a session id cookie.
// The catalog token of an admin is stored under that id.
func SessionMiddleware(config SessionConfig) fiber.Handler {
	if config.CookieName == "" {
		config.CookieName = "storefront_session"
	}

	return func(c *fiber.Ctx) error {
		id := c.Cookies(config.CookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     config.CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(config.TTL),
				HTTPOnly: true,
				Secure:   config.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// SessionID returns the id assigned by SessionMiddleware
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}

// AdminMiddleware rejects requests whose session holds no usable catalog token
func AdminMiddleware(sessions auth.Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := SessionID(c)
		if id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if _, ok := sessions.ForSession(id).Get(c.UserContext()); !ok {
			logger.Warn(c.UserContext()).
				Str("path", c.Path()).
				Msg("Admin request without a valid session token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		return c.Next()
	}
}
