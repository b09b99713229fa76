package ports

import (
	"context"
	"time"

	"github.com/samirrijal/oinez/internal/core/domain"
)

// EventPublisher publishes accessibility events to a message broker.
type EventPublisher interface {
	PublishObstacleReported(ctx context.Context, ev *domain.ReportEvent) error
	PublishFeatureReported(ctx context.Context, ev *domain.ReportEvent) error
	PublishObstacleCleared(ctx context.Context, ev *domain.ClearEvent) error
}

// EventSubscriber subscribes to accessibility events from a message broker.
type EventSubscriber interface {
	SubscribeObstacleReported(ctx context.Context, handler func(ctx context.Context, ev *domain.ReportEvent) error) error
	SubscribeFeatureReported(ctx context.Context, handler func(ctx context.Context, ev *domain.ReportEvent) error) error
	SubscribeObstacleCleared(ctx context.Context, handler func(ctx context.Context, ev *domain.ClearEvent) error) error
}

// CacheService provides read-through caching and small key-value storage.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WorkflowStarter schedules the removal of a temporary obstacle once its
// validity window passes.
type WorkflowStarter interface {
	StartObstacleExpiry(ctx context.Context, location domain.GeoPoint, expiresAt time.Time) error
}
