// Package rayid assigns a unique request id to every incoming request.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the response header carrying the generated request id.
const Header = "X-Ray-ID"

// New returns a middleware that stores a fresh ray id in the request locals
// and echoes it back on the response. An incoming X-Ray-ID is honored so
// multi-hop calls keep one trace id.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
