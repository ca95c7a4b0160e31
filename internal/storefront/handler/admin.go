package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/catalog/format"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/media"
)

// SaveResponse is returned after a create or update
type SaveResponse struct {
	Product format.Card `json:"product"`
	Message string      `json:"message"`
}

// CreateProduct handles POST /admin/products
func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	machine := h.machine(c)
	if err := applyForm(c, machine); err != nil {
		return err
	}
	return h.submit(c, machine, fiber.StatusCreated)
}

// UpdateProduct handles PUT /admin/products/:id. Fields missing from the
// request keep their current value.
func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	machine := h.machine(c)

	current, err := h.catalogFor(c).GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	machine.StartEditing(current)

	if err := applyForm(c, machine); err != nil {
		return err
	}
	return h.submit(c, machine, fiber.StatusOK)
}

// DeleteProduct handles DELETE /admin/products/:id?confirm=true
func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	machine := h.machine(c)

	var confirm func(string) bool
	if raw := c.Query("confirm"); raw != "" {
		ok, _ := strconv.ParseBool(raw)
		confirm = func(string) bool { return ok }
	}

	if err := machine.Delete(c.UserContext(), c.Params("id"), confirm); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": machine.Snapshot().Feedback})
}

func (h *Handler) submit(c *fiber.Ctx, machine *form.Machine, status int) error {
	saved, err := machine.Submit(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(status).JSON(SaveResponse{
		Product: format.NewCard(saved),
		Message: machine.Snapshot().Feedback,
	})
}

// machine builds a form machine bound to the caller's session token
func (h *Handler) machine(c *fiber.Ctx) *form.Machine {
	opts := []form.Option{form.WithImageFolder(h.opts.ImageFolder)}
	if h.notifier != nil {
		opts = append(opts, form.WithNotifier(h.notifier))
	}
	if h.refresher != nil {
		opts = append(opts, form.WithRefresher(h.refresher))
	}
	return form.NewMachine(h.catalogFor(c), h.images, opts...)
}

func (h *Handler) catalogFor(c *fiber.Ctx) *gateway.Client {
	return h.catalog.WithTokenStore(h.sessionTokens(c))
}

// applyForm copies submitted fields into the draft and stages the image
func applyForm(c *fiber.Ctx, machine *form.Machine) error {
	values := formValues(c)
	for _, field := range form.Fields {
		value, ok := values[field]
		if !ok {
			continue
		}
		if err := machine.ChangeField(field, value); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	header, err := c.FormFile("image")
	if err != nil {
		// No file part is not an error
		return nil
	}

	fh, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unable to read image upload")
	}
	defer fh.Close()

	contentType := header.Header.Get(fiber.HeaderContentType)
	if contentType == fiber.MIMEOctetStream {
		// Generic uploads are sniffed instead
		contentType = ""
	}

	file, err := media.ReadFile(header.Filename, contentType, header.Size, fh)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unable to read image upload")
	}
	return machine.SelectImageFile(&file)
}

// formValues collects multipart or urlencoded fields, first value wins
func formValues(c *fiber.Ctx) map[string]string {
	values := make(map[string]string)

	if mf, err := c.MultipartForm(); err == nil {
		for key, vals := range mf.Value {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		return values
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if _, seen := values[string(key)]; !seen {
			values[string(key)] = string(value)
		}
	})
	return values
}
