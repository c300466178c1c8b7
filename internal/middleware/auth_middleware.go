package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Denylist answers whether a token id has been revoked. A nil Denylist
// disables the check.
type Denylist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates the bearer token and stores the decoded claims in the
// request locals for the handlers: user_id, email, name, role, jti and
// token_exp.
func Auth(jwtSecret []byte, denylist Denylist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Get("Authorization")
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token format"})
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		userID, userExists := claims["user_id"].(string)
		role, roleExists := claims["role"].(string)
		if !userExists || !roleExists {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token payload"})
		}

		jti, _ := claims["jti"].(string)
		if denylist != nil && jti != "" {
			revoked, err := denylist.IsRevoked(c.Context(), jti)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
			}
			if revoked {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token revoked"})
			}
		}

		email, _ := claims["email"].(string)
		name, _ := claims["name"].(string)

		c.Locals("user_id", userID)
		c.Locals("email", email)
		c.Locals("name", name)
		c.Locals("role", role)
		c.Locals("jti", jti)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			c.Locals("token_exp", exp.Time)
		}

		return c.Next()
	}
}
