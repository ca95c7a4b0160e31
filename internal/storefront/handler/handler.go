package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/catalog/browse"
	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/media"
)

// Fallback is the catalog served when the upstream is unavailable
type Fallback []domain.Product

// Options tunes the storefront handlers
type Options struct {
	FetchLimit  int
	ImageFolder string
}

// Handler serves the storefront HTTP API
type Handler struct {
	catalog   *gateway.Client
	sessions  auth.Sessions
	images    media.Store
	notifier  form.ChangeNotifier
	refresher form.Refresher
	fallback  Fallback
	opts      Options
}

// NewHandler creates the storefront handler. notifier and refresher may be
// nil. refresher runs after every saved product change, before the response.
func NewHandler(
	catalog *gateway.Client,
	sessions auth.Sessions,
	images media.Store,
	notifier form.ChangeNotifier,
	refresher form.Refresher,
	fallback Fallback,
	opts Options,
) *Handler {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = browse.DefaultFetchLimit
	}
	if opts.ImageFolder == "" {
		opts.ImageFolder = form.DefaultImageFolder
	}
	return &Handler{
		catalog:   catalog,
		sessions:  sessions,
		images:    images,
		notifier:  notifier,
		refresher: refresher,
		fallback:  fallback,
		opts:      opts,
	}
}

// ErrorHandler maps domain errors onto HTTP responses
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, body := errorResponse(err)
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		body["requestId"] = id
	}
	body["statusCode"] = code
	body["path"] = c.Path()
	return c.Status(code).JSON(body)
}

func errorResponse(err error) (int, fiber.Map) {
	var (
		fiberErr      *fiber.Error
		validationErr *form.ValidationError
		uploadErr     *form.UploadError
		gatewayErr    *gateway.GatewayError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiber.Map{"error": fiberErr.Message}
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, fiber.Map{"error": validationErr.Message, "field": validationErr.Field}
	case errors.As(err, &uploadErr):
		if uploadErr.Err != nil {
			return fiber.StatusBadGateway, fiber.Map{"error": uploadErr.Message}
		}
		return fiber.StatusUnprocessableEntity, fiber.Map{"error": uploadErr.Message}
	case errors.Is(err, form.ErrBusy):
		return fiber.StatusConflict, fiber.Map{"error": "Another change is still being saved."}
	case errors.Is(err, form.ErrConfirmationRequired), errors.Is(err, form.ErrCancelled):
		return fiber.StatusPreconditionRequired, fiber.Map{"error": "Deleting a product must be confirmed with confirm=true."}
	case errors.Is(err, gateway.ErrInvalidArgument):
		return fiber.StatusBadRequest, fiber.Map{"error": gateway.Message(err, gateway.FallbackRequestFailed)}
	case errors.Is(err, gateway.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable, fiber.Map{"error": "Catalog is temporarily unavailable."}
	case errors.As(err, &gatewayErr):
		code := gatewayErr.Status
		if code < fiber.StatusBadRequest || code >= fiber.StatusInternalServerError {
			code = fiber.StatusBadGateway
		}
		return code, fiber.Map{"error": gateway.Message(err, gateway.FallbackRequestFailed)}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": gateway.FallbackRequestFailed}
	}
}
