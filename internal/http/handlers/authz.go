package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "comparador/internal/log"
)

// RequireReloadToken admits requests whose bearer token matches the bcrypt
// hash. An empty hash disables the guarded routes entirely.
func RequireReloadToken(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			applog.Security(c, "access.denied.reload", map[string]any{"reason": "disabled"})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "reload disabled"})
		}
		tok, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || tok == "" {
			applog.Security(c, "access.denied.reload", map[string]any{"reason": "missing token"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tok)); err != nil {
			applog.Security(c, "access.denied.reload", map[string]any{"reason": "bad token"})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}
