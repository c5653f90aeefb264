package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one structured line per request. Lines carry the
// route pattern rather than the raw path, so /v1/vehicles/:id/map groups
// across vehicles. Health checks and metric scrapes log at debug.
func AccessLogMiddleware() fiber.Handler {
	quiet := map[string]bool{"/v1/health": true, "/v1/ready": true, "/metrics": true}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("route", c.Route().Path),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if owner, _ := c.Locals("user_id").(string); owner != "" {
			attrs = append(attrs, slog.String("owner_id", owner))
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case quiet[path]:
			level = slog.LevelDebug
		}

		slog.LogAttrs(c.UserContext(), level, "http request", attrs...)
		return err
	}
}
