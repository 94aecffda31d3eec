package handlers

import (
	"github.com/gofiber/fiber/v2"

	"asinity/internal/domain"
	"asinity/internal/log"
	"asinity/internal/services"
	"asinity/internal/validate"
)

// ProductHandler serves the single-product operations.
type ProductHandler struct {
	Catalog   *services.CatalogService
	Reconcile *services.ReconcileService
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	asin, ok := validate.ASIN(c.Params("asin"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "asin"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	view, err := h.Catalog.GetProduct(asin)
	if err != nil {
		return writeErr(c, "product.get", err)
	}
	return c.JSON(view)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in domain.ProductPayload
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "malformed json body")
	}
	if err := h.Reconcile.Create(in); err != nil {
		return writeErr(c, "product.create", err)
	}
	log.Audit(c, "product.create", map[string]any{"asin": in.ASIN})

	view, err := h.Catalog.GetProduct(in.ASIN)
	if err != nil {
		return writeErr(c, "product.create.project", err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	asin, ok := validate.ASIN(c.Params("asin"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	var in domain.ProductPayload
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "malformed json body")
	}
	if err := h.Reconcile.Update(asin, in); err != nil {
		return writeErr(c, "product.update", err)
	}
	log.Audit(c, "product.update", map[string]any{"asin": asin})

	view, err := h.Catalog.GetProduct(asin)
	if err != nil {
		return writeErr(c, "product.update.project", err)
	}
	return c.JSON(view)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	asin, ok := validate.ASIN(c.Params("asin"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	if err := h.Reconcile.Delete(asin); err != nil {
		return writeErr(c, "product.delete", err)
	}
	log.Audit(c, "product.delete", map[string]any{"asin": asin})
	return c.JSON(fiber.Map{"message": "the product has been deleted"})
}
