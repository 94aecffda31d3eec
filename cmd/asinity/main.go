package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"asinity/internal/config"
	"asinity/internal/http/handlers"
	applog "asinity/internal/log"
	"asinity/internal/repos"
	"asinity/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	authSvc := &services.AuthService{
		Users:      repos.NewUserRepo(db),
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please retry",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// Login throttled harder than the rest of the API
	app.Use("/api/v1/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, authSvc)
	handlers.Register(app, deps)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
