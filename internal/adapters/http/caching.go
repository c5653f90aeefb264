package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasSuffix(path, "/map"), strings.HasSuffix(path, "/position"):
			ttl = "private, max-age=5" // live vehicle data

		case strings.HasSuffix(path, "/alerts"):
			ttl = "private, no-cache"

		case strings.HasSuffix(path, "/ring"):
			ttl = "public, max-age=3600" // rings only change with the zone

		case strings.HasPrefix(path, "/v1/trips/"):
			ttl = "public, max-age=600" // recorded paths

		case strings.HasPrefix(path, "/v1/"):
			ttl = "private, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
