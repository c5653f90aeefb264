package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/samirrijal/fleetview/internal/adapters/http"
	natsadapter "github.com/samirrijal/fleetview/internal/adapters/nats"
	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/adapters/valkey"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/mapview"
	"github.com/samirrijal/fleetview/internal/pkg/config"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
	"github.com/samirrijal/fleetview/internal/pkg/logging"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
	"github.com/samirrijal/fleetview/internal/pkg/telemetry"
	"github.com/samirrijal/fleetview/internal/workflows"
)

func main() {
	cfg, err := config.Load("fleetview-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache
	var sceneCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, scene cache disabled", "error", err)
	} else {
		sceneCache = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, geofence checks run inline", "error", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	vehicleRepo := postgres.NewVehicleRepo(db)
	positionRepo := postgres.NewVehiclePositionRepo(db)
	geofenceRepo := postgres.NewGeofenceRepo(db)
	routeRepo := postgres.NewRoutePointRepo(db)
	alertRepo := postgres.NewGeofenceAlertRepo(db)

	// Use cases
	alertSvc := usecases.NewAlertService(alertRepo, vehicleRepo, &usecases.LogNotifier{Logger: logger})

	var dispatcher ports.AlertDispatcher = alertSvc
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		slog.Warn("temporal unavailable, alerts dispatched in-process", "error", err)
	} else {
		dispatcher = workflows.NewDispatcher(tc, cfg.Temporal.TaskQueue)
		defer tc.Close()
	}

	rings := usecases.NewRingMemo(0, cfg.Map.Segments)
	geofenceSvc := usecases.NewGeofenceService(geofenceRepo, vehicleRepo, alertRepo, dispatcher, publisher, rings, logger)
	vehicleSvc := usecases.NewVehicleService(vehicleRepo, positionRepo, publisher, geofenceSvc, logger)
	routeSvc := usecases.NewRouteService(routeRepo)
	mapSvc := usecases.NewMapViewService(positionRepo, geofenceRepo, routeRepo, sceneCache, rings, mapSettings(cfg.Map), logger)

	deps := &http.Dependencies{
		Vehicles:  vehicleSvc,
		Geofences: geofenceSvc,
		Routes:    routeSvc,
		Alerts:    alertSvc,
		Maps:      mapSvc,
		Auth:      cfg.Auth,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Fleetview API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "map_enabled", cfg.Map.Enabled, "vector_enabled", cfg.Map.VectorEnabled)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func mapSettings(m config.MapConfig) usecases.MapViewSettings {
	return usecases.MapViewSettings{
		Map: mapview.Config{
			Enabled:       m.Enabled,
			VectorEnabled: m.VectorEnabled,
			AccessToken:   m.AccessToken,
			StyleURL:      m.StyleURL,
			TileURL:       m.TileURL,
			Attribution:   m.Attribution,
		},
		Fit: geospatial.FitOptions{
			CloseUpZoom: m.CloseUpZoom,
			MaxZoom:     m.MaxZoom,
			PaddingPx:   m.PaddingPx,
		},
		SceneTTL: m.SceneTTL,
	}
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
