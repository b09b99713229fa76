package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ExpiryTaskQueue is the Temporal task queue for obstacle expiry.
const ExpiryTaskQueue = "oinez-expiry"

// ExpiryInput identifies a temporary obstacle and when it lapses.
type ExpiryInput struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ObstacleExpiryWorkflow sleeps until a temporary obstacle's expiry time
// and then clears it from the knowledge base. Temporal keeps the timer
// durable, so the clear fires even if every process restarts in between.
func ObstacleExpiryWorkflow(ctx workflow.Context, input ExpiryInput) error {
	logger := workflow.GetLogger(ctx)

	remaining := input.ExpiresAt.Sub(workflow.Now(ctx))
	if remaining > 0 {
		logger.Info("obstacle expiry scheduled",
			"lat", input.Lat, "lon", input.Lon, "sleep", remaining.String())
		if err := workflow.Sleep(ctx, remaining); err != nil {
			return err
		}
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	return workflow.ExecuteActivity(ctx, "ClearExpiredObstacle", input.Lat, input.Lon).Get(ctx, nil)
}
