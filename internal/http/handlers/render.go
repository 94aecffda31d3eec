package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"asinity/internal/domain"
	applog "asinity/internal/log"
)

// writeErr maps the service error taxonomy to HTTP. Anything outside the
// taxonomy is a storage failure: logged server-side, generic message out.
func writeErr(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrBadCreds):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong, please retry"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
