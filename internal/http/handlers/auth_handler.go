package handlers

import (
	"github.com/gofiber/fiber/v2"

	"asinity/internal/log"
	"asinity/internal/services"
	"asinity/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerBody struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed json body")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		log.Security(c, "auth.register.fail", map[string]any{"reason": "bad_email"})
		return badRequest(c, "enter a valid email")
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		return badRequest(c, "enter a valid name")
	}
	if !validate.Password(body.Password) {
		return badRequest(c, "password must be 8-64 chars with upper, lower, digit and symbol")
	}

	u, err := h.Auth.Register(email, name, body.Password)
	if err != nil {
		return writeErr(c, "auth.register", err)
	}
	log.Audit(c, "auth.register.success", map[string]any{"user": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "the user has been registered"})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed json body")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	pair, err := h.Auth.Login(email, body.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return writeErr(c, "auth.login", err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(pair)
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body refreshBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed json body")
	}
	access, err := h.Auth.Refresh(body.RefreshToken)
	if err != nil {
		return writeErr(c, "auth.refresh", err)
	}
	return c.JSON(fiber.Map{"access_token": access})
}
