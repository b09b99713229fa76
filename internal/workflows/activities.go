package workflows

import (
	"context"
	"log/slog"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/usecases"
)

// ExpiryActivities holds dependencies for the expiry worker's activities.
type ExpiryActivities struct {
	Reports *usecases.ReportService
}

// ClearExpiredObstacle removes obstacles at the given coordinate from the
// knowledge base, records the clearance in the report history, and
// publishes it so every API instance drops the obstacle too.
func (a *ExpiryActivities) ClearExpiredObstacle(ctx context.Context, lat, lon float64) error {
	info := activity.GetInfo(ctx)
	slog.Info("clearing expired obstacle",
		"lat", lat, "lon", lon, "workflow_id", info.WorkflowExecution.ID)

	removed, err := a.Reports.ClearObstaclesNear(ctx, domain.GeoPoint{Lat: lat, Lon: lon})
	if err != nil {
		return err
	}
	slog.Info("expired obstacle cleared", "lat", lat, "lon", lon, "removed", removed)
	return nil
}
