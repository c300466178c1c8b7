package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akshat03/shopcart/internal/services"
)

// currentUserID reads the authenticated user's id that the auth
// middleware placed in the request locals.
func currentUserID(c *fiber.Ctx) (primitive.ObjectID, error) {
	s, ok := c.Locals("user_id").(string)
	if !ok || s == "" {
		return primitive.NilObjectID, errors.New("unauthorized")
	}
	return primitive.ObjectIDFromHex(s)
}

// fail maps a service error to its HTTP status and replies with the
// human-readable part of the message.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicate):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": userMessage(err)})
}

// userMessage strips the trailing sentinel from a wrapped service
// error, turning "product not found: not found" into "product not found".
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		services.ErrValidation, services.ErrUnauthorized,
		services.ErrNotFound, services.ErrDuplicate,
	} {
		msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	}
	return msg
}
