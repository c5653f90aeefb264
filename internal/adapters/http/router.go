package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/fleetview/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no auth, no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// REST API v1
	v1 := app.Group("/v1", AuthMiddleware(deps.Auth))
	v1.Get("/vehicles", timeout.NewWithContext(ListVehiclesHandler(deps), requestTimeout))
	v1.Get("/vehicles/:id", timeout.NewWithContext(GetVehicleHandler(deps), requestTimeout))
	v1.Get("/vehicles/:id/position", timeout.NewWithContext(VehiclePositionHandler(deps), requestTimeout))
	v1.Post("/vehicles/:id/positions", timeout.NewWithContext(IngestPositionHandler(deps), requestTimeout))
	v1.Post("/vehicles/:id/positions/batch", timeout.NewWithContext(IngestBatchHandler(deps), requestTimeout))
	v1.Get("/vehicles/:id/geofences", timeout.NewWithContext(ListGeofencesHandler(deps), requestTimeout))
	v1.Post("/vehicles/:id/geofences", timeout.NewWithContext(CreateGeofenceHandler(deps), requestTimeout))
	v1.Get("/vehicles/:id/alerts", timeout.NewWithContext(VehicleAlertsHandler(deps), requestTimeout))
	v1.Get("/vehicles/:id/map", timeout.NewWithContext(VehicleMapHandler(deps), requestTimeout))
	v1.Get("/geofences/:id", timeout.NewWithContext(GetGeofenceHandler(deps), requestTimeout))
	v1.Delete("/geofences/:id", timeout.NewWithContext(DeleteGeofenceHandler(deps), requestTimeout))
	v1.Get("/geofences/:id/ring", timeout.NewWithContext(GeofenceRingHandler(deps), requestTimeout))
	v1.Get("/trips/:id/path", timeout.NewWithContext(TripPathHandler(deps), requestTimeout))
	v1.Get("/trips/:id/summary", timeout.NewWithContext(TripSummaryHandler(deps), requestTimeout))
	v1.Get("/owners/:id/map", timeout.NewWithContext(FleetMapHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", AuthMiddleware(deps.Auth), GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", AuthMiddleware(deps.Auth), websocket.New(WebSocketHandler(deps)))
}
