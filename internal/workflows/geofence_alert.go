package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// Activity names as registered on the worker.
const (
	ActivityPersistAlert    = "PersistAlert"
	ActivityNotifyOwner     = "NotifyOwner"
	ActivityMarkUndelivered = "MarkUndelivered"
)

// GeofenceAlertWorkflow persists an alert and notifies the vehicle owner.
// If the notification fails, the alert is marked undelivered (saga
// compensation).
func GeofenceAlertWorkflow(ctx workflow.Context, alert domain.GeofenceAlert) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting geofence alert workflow", "alertID", alert.ID, "event", alert.Event)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Persist
	if err := workflow.ExecuteActivity(ctx, ActivityPersistAlert, alert).Get(ctx, nil); err != nil {
		return err
	}

	// Step 2: Notify
	err := workflow.ExecuteActivity(ctx, ActivityNotifyOwner, alert).Get(ctx, nil)
	if err != nil {
		logger.Warn("owner notification failed, compensating", "error", err)
		_ = workflow.ExecuteActivity(ctx, ActivityMarkUndelivered, alert.ID).Get(ctx, nil)
		return err
	}

	logger.Info("Geofence alert delivered", "alertID", alert.ID)
	return nil
}
