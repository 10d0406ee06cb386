package middleware

import (
	"echohole/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocal is the Fiber locals key holding the caller's identity hash.
const IdentityLocal = "identity"

// Identity derives the caller's opaque identity hash once per request.
// The raw address never leaves this middleware.
func Identity(h *identity.Hasher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(IdentityLocal, h.Hash(c.IP(), c.Get(fiber.HeaderUserAgent)))
		return c.Next()
	}
}

// IdentityFrom returns the identity hash stored by Identity, or "".
func IdentityFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(IdentityLocal).(string)
	return id
}
