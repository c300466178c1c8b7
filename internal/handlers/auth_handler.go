package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/akshat03/shopcart/internal/services"
)

type AuthHandler struct {
	Svc *services.AuthService
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := h.Svc.Signup(c.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := h.Svc.Login(c.Context(), request.Email, request.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Logout revokes the presented token for the rest of its lifetime.
// Calling it twice is harmless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	expiresAt, _ := c.Locals("token_exp").(time.Time)

	if err := h.Svc.Logout(c.Context(), jti, expiresAt); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.Svc.Profile(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var request struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.Svc.UpdateProfile(c.Context(), userID, request.Name, request.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}
