package handlers

import "github.com/gofiber/fiber/v2"

// Register mounts all API routes. Reads are public; every mutation and the
// asin/brand listings are admin-gated.
func Register(app *fiber.App, d *Deps) {
	api := app.Group("/api/v1")

	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", d.AuthHandler.Login)
	api.Post("/auth/refresh", d.AuthHandler.Refresh)

	admin := RequireAdmin(d.Auth)

	api.Post("/product", admin, d.ProductHandler.Create)
	api.Get("/product/:asin", d.ProductHandler.Get)
	api.Put("/product/:asin", admin, d.ProductHandler.Update)
	api.Delete("/product/:asin", admin, d.ProductHandler.Delete)

	api.Get("/products", d.ProductsHandler.List)
	api.Post("/products", admin, d.ProductsHandler.BatchCreate)
	api.Put("/products", admin, d.ProductsHandler.BatchUpdate)
	api.Delete("/products", admin, d.ProductsHandler.DeleteAll)
	api.Get("/products/asins", admin, d.ProductsHandler.Asins)

	api.Get("/brands", admin, d.ProductsHandler.Brands)
}
