package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"asinity/internal/domain"
	"asinity/internal/log"
	"asinity/internal/services"
	"asinity/internal/validate"
)

// ProductsHandler serves the collection operations: listing, batch create,
// batch update and delete-all.
type ProductsHandler struct {
	Catalog   *services.CatalogService
	Reconcile *services.ReconcileService
}

func (h *ProductsHandler) List(c *fiber.Ctx) error {
	q := services.ListQuery{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 10),
		SortBy:  c.Query("sort_by", "ranking"),
	}

	order, ok := validate.SortOrder(c.Query("sort_order"))
	if !ok {
		return badRequest(c, "sort_order must be asc or desc")
	}
	q.SortOrder = order

	if v := c.Query("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(c, "min_price must be a number")
		}
		q.MinPrice = &f
	}
	if v := c.Query("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(c, "max_price must be a number")
		}
		q.MaxPrice = &f
	}
	if v := c.Query("brands"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				q.Brands = append(q.Brands, b)
			}
		}
	}

	listing, err := h.Catalog.List(q)
	if err != nil {
		return writeErr(c, "products.list", err)
	}
	return c.JSON(listing)
}

func (h *ProductsHandler) BatchCreate(c *fiber.Ctx) error {
	var payloads []domain.ProductPayload
	if err := c.BodyParser(&payloads); err != nil {
		return badRequest(c, "expected a json array of products")
	}
	if len(payloads) == 0 {
		return badRequest(c, "empty batch")
	}

	res, err := h.Reconcile.BatchCreate(payloads)
	if err != nil {
		return writeErr(c, "products.batch_create", err)
	}
	log.Audit(c, "products.batch_create", map[string]any{
		"created": res.CreatedCount, "repeated": res.RepeatedCount,
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ProductsHandler) BatchUpdate(c *fiber.Ctx) error {
	var payloads []domain.ProductPayload
	if err := c.BodyParser(&payloads); err != nil {
		return badRequest(c, "expected a json array of products")
	}
	if len(payloads) == 0 {
		return badRequest(c, "empty batch")
	}

	res, err := h.Reconcile.BatchUpdate(payloads)
	if err != nil {
		return writeErr(c, "products.batch_update", err)
	}
	log.Audit(c, "products.batch_update", map[string]any{
		"updated": res.UpdatedCount, "to_create": len(res.ToCreate),
	})
	return c.JSON(res)
}

func (h *ProductsHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.Reconcile.DeleteAll()
	if err != nil {
		return writeErr(c, "products.delete_all", err)
	}
	log.Audit(c, "products.delete_all", map[string]any{"deleted": n})
	return c.JSON(fiber.Map{"deleted_count": n})
}

func (h *ProductsHandler) Asins(c *fiber.Ctx) error {
	asins, err := h.Catalog.Asins()
	if err != nil {
		return writeErr(c, "products.asins", err)
	}
	return c.JSON(fiber.Map{"asins": asins})
}

func (h *ProductsHandler) Brands(c *fiber.Ctx) error {
	brands, err := h.Catalog.Brands()
	if err != nil {
		return writeErr(c, "products.brands", err)
	}
	return c.JSON(fiber.Map{"brands": brands})
}
