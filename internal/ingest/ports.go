// Package ingest implements the rate-aware incremental ingestion
// engine: watermark resolution, paced fetching, quota strategies, and
// the run orchestrator.
package ingest

import (
	"context"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
)

// Provider is the upstream content source the engine fetches from.
// Implementations translate provider failures into the operational
// error taxonomy before returning them.
type Provider interface {
	// LookupUser resolves a handle to its durable upstream identity.
	LookupUser(ctx context.Context, handle string) (*domain.Identity, error)

	// UserTweetsSince fetches tweets created at or after since for the
	// resolved user, capped at pageSize items.
	UserTweetsSince(ctx context.Context, userID, handle, displayName string, since time.Time, pageSize int) ([]domain.Tweet, error)
}
