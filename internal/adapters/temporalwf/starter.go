package temporalwf

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/workflows"
)

// Starter implements ports.WorkflowStarter using a Temporal client.
type Starter struct {
	client client.Client
}

// New dials the Temporal server.
func New(hostPort, namespace string) (*Starter, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial: %w", err)
	}
	return &Starter{client: c}, nil
}

// StartObstacleExpiry schedules a durable timer that clears the obstacle
// once it lapses. The workflow ID is derived from the coordinate and
// expiry so re-reporting the same obstacle does not stack duplicate
// timers.
func (s *Starter) StartObstacleExpiry(ctx context.Context, location domain.GeoPoint, expiresAt time.Time) error {
	opts := client.StartWorkflowOptions{
		ID: fmt.Sprintf("obstacle-expiry-%.7f-%.7f-%d",
			location.Lat, location.Lon, expiresAt.Unix()),
		TaskQueue: workflows.ExpiryTaskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.ObstacleExpiryWorkflow, workflows.ExpiryInput{
		Lat:       location.Lat,
		Lon:       location.Lon,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("start expiry workflow: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Starter) Close() {
	s.client.Close()
}
