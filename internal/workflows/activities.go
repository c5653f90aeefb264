package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
)

// AlertActivities holds the activity implementations for the geofence
// alert workflow.
type AlertActivities struct {
	Alerts *usecases.AlertService
	Logger *slog.Logger
}

func (a *AlertActivities) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// PersistAlert stores the alert. Re-running it for the same alert is safe.
func (a *AlertActivities) PersistAlert(ctx context.Context, alert domain.GeofenceAlert) error {
	if err := a.Alerts.Persist(ctx, &alert); err != nil {
		return fmt.Errorf("persist alert: %w", err)
	}
	return nil
}

// NotifyOwner pushes the alert to the vehicle owner and marks it delivered.
func (a *AlertActivities) NotifyOwner(ctx context.Context, alert domain.GeofenceAlert) error {
	if err := a.Alerts.Notify(ctx, &alert); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}
	return nil
}

// MarkUndelivered clears the delivered flag (saga compensation).
func (a *AlertActivities) MarkUndelivered(ctx context.Context, alertID string) error {
	if err := a.Alerts.Undeliver(ctx, alertID); err != nil {
		return fmt.Errorf("mark alert %s undelivered: %w", alertID, err)
	}
	a.logger().Warn("alert left undelivered (saga compensation)", "alert_id", alertID)
	return nil
}
