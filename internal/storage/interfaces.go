package storage

import (
	"context"
	"io"

	"github.com/suitent/sui-deepbook-swap/internal/models"
)

// BuildCache defines the interface for the recent-builds feed
type BuildCache interface {
	// AddRecentBuild adds a build event to the recent-builds list
	AddRecentBuild(ctx context.Context, ev *models.BuildEvent) error

	// GetRecentBuilds retrieves the most recent build events
	GetRecentBuilds(ctx context.Context, limit int64) ([]*models.BuildEvent, error)

	// PublishBuild publishes a build event to the Pub/Sub channels
	PublishBuild(ctx context.Context, ev *models.BuildEvent) error

	// SubscribeBuilds subscribes to real-time build events
	SubscribeBuilds(ctx context.Context) (<-chan *models.BuildEvent, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// BuildStore defines the interface for persistent build auditing
type BuildStore interface {
	// InsertBuild inserts a build event into the store
	InsertBuild(ctx context.Context, ev *models.BuildEvent) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}
