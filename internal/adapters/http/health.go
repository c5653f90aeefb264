package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler is the liveness check. It never touches dependencies.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Truncate(time.Second).String(),
			"version": version,
		})
	}
}

// dependencyCheck pings one backing service. A nil ping means the service
// is not configured; only required services fail readiness then.
type dependencyCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

func dependencyChecks(deps *Dependencies) []dependencyCheck {
	db := dependencyCheck{name: "database", required: true}
	if deps.DB != nil {
		db.ping = deps.DB.Ping
	}
	// Positions and alerts still flow without the broker; geofence checks
	// then run inline.
	feed := dependencyCheck{name: "nats"}
	if deps.NATS != nil {
		feed.ping = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}
	scenes := dependencyCheck{name: "scene_cache"}
	if deps.Cache != nil {
		scenes.ping = deps.Cache.Ping
	}
	return []dependencyCheck{db, feed, scenes}
}

// ReadyHandler reports whether the API can serve fleet data.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := dependencyChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			switch {
			case chk.ping == nil:
				results[chk.name] = "not configured"
				ready = ready && !chk.required
			default:
				if err := chk.ping(ctx); err != nil {
					results[chk.name] = "error: " + err.Error()
					ready = false
				} else {
					results[chk.name] = "ok"
				}
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": results,
			})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "dev"
	}
	return info.Main.Version
}
