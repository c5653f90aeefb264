package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/pkg/config"
	"github.com/samirrijal/fleetview/internal/pkg/logging"
	"github.com/samirrijal/fleetview/internal/workflows"
)

func main() {
	cfg, err := config.Load("fleetview-alerter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	logger := slog.Default()

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	alerts := usecases.NewAlertService(
		postgres.NewGeofenceAlertRepo(db),
		postgres.NewVehicleRepo(db),
		&usecases.LogNotifier{Logger: logger},
	)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.GeofenceAlertWorkflow)
	w.RegisterActivity(&workflows.AlertActivities{Alerts: alerts, Logger: logger})

	slog.Info("alerter worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
