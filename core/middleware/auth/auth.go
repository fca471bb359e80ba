package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header is the request header carrying the API key.
const Header = "X-API-Key"

// Config configures the API key middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
	// Skip returns true for requests that bypass authentication (e.g. the public media proxy).
	Skip func(c *fiber.Ctx) bool
}

// New returns a middleware that rejects requests without a valid API key.
// The key is read from the X-API-Key header or the "key" query parameter,
// the latter because schedulers triggering /sync often cannot set headers.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" || (cfg.Skip != nil && cfg.Skip(c)) {
			return c.Next()
		}

		key := c.Get(Header)
		if key == "" {
			key = c.Query("key")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
