package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/storefront/middleware"
	"github.com/tair/storefront/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /auth/login. The catalog token stays server side,
// bound to the session cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	tokens := h.sessionTokens(c)
	if _, err := h.catalog.WithTokenStore(tokens).Login(c.UserContext(), gateway.Credentials{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		logger.Warn(c.UserContext()).Err(err).Str("email", req.Email).Msg("Admin login failed")
		return err
	}

	logger.Info(c.UserContext()).Str("email", req.Email).Msg("Admin logged in")
	return c.JSON(fiber.Map{"authenticated": true})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessionTokens(c).Clear(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"authenticated": false})
}

// Session handles GET /auth/session
func (h *Handler) Session(c *fiber.Ctx) error {
	_, ok := h.sessionTokens(c).Get(c.UserContext())
	return c.JSON(fiber.Map{"authenticated": ok})
}

func (h *Handler) sessionTokens(c *fiber.Ctx) auth.TokenStore {
	return h.sessions.ForSession(middleware.SessionID(c))
}
