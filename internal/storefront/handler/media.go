package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/internal/media"
)

// ServeMedia handles GET /media/* for images held by the in-memory store.
// Images in a bucket are served by the bucket itself.
func ServeMedia(store *media.MemoryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, ok := store.Get(c.Params("*"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Image not found")
		}
		c.Set(fiber.HeaderContentType, file.Type())
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
		return c.Send(file.Data)
	}
}
