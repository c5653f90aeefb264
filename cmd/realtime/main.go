package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	natsadapter "github.com/samirrijal/fleetview/internal/adapters/nats"
	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/pkg/config"
	"github.com/samirrijal/fleetview/internal/pkg/logging"
	"github.com/samirrijal/fleetview/internal/pkg/telemetry"
	"github.com/samirrijal/fleetview/internal/workflows"
)

// The realtime worker consumes the position stream, runs geofence checks
// and persists every published alert.
func main() {
	cfg, err := config.Load("fleetview-realtime")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// The publisher also declares the streams the subscriber binds to.
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	vehicleRepo := postgres.NewVehicleRepo(db)
	alertRepo := postgres.NewGeofenceAlertRepo(db)
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
	geofences := usecases.NewGeofenceService(postgres.NewGeofenceRepo(db), vehicleRepo, alertRepo, dispatcher, pub, rings, logger)

	err = sub.SubscribeVehiclePositions(ctx, func(ctx context.Context, vp *domain.VehiclePosition) error {
		alerts, err := geofences.Check(ctx, vp)
		if err != nil {
			slog.Error("geofence check failed", "vehicle_id", vp.VehicleID, "error", err)
			return err
		}
		for _, a := range alerts {
			slog.Info("geofence crossing", "vehicle_id", a.VehicleID, "zone_id", a.ZoneID, "event", a.Event)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe positions: %v", err)
	}

	err = sub.SubscribeGeofenceAlerts(ctx, func(ctx context.Context, a *domain.GeofenceAlert) error {
		return alertSvc.Persist(ctx, a)
	})
	if err != nil {
		log.Fatalf("subscribe alerts: %v", err)
	}

	slog.Info("realtime worker started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("received signal, shutting down realtime worker", "signal", sig.String())
	cancel()
	// Give in-flight handlers time to ack
	time.Sleep(2 * time.Second)
}
