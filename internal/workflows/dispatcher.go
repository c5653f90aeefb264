package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// Dispatcher implements ports.AlertDispatcher by starting a
// GeofenceAlertWorkflow per alert.
type Dispatcher struct {
	client    client.Client
	taskQueue string
}

// NewDispatcher creates a Dispatcher on the given task queue.
func NewDispatcher(c client.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{client: c, taskQueue: taskQueue}
}

func (d *Dispatcher) Dispatch(ctx context.Context, alert *domain.GeofenceAlert) error {
	opts := client.StartWorkflowOptions{
		ID:        "geofence-alert-" + alert.ID,
		TaskQueue: d.taskQueue,
	}
	if _, err := d.client.ExecuteWorkflow(ctx, opts, GeofenceAlertWorkflow, *alert); err != nil {
		return fmt.Errorf("start alert workflow: %w", err)
	}
	return nil
}
