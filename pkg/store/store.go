// Package store persists episode records and the processed-paper set.
// The default backend is a pair of JSON files; Mongo and Postgres
// backends implement the same interface so the orchestrator never
// touches storage details.
package store

import (
	"context"

	"paperradio/pkg/domain"
)

// Store is the storage abstraction the orchestrator and validator work
// against. Episode upserts are keyed by ID (last write wins); the
// processed set is append-only from the caller's perspective.
type Store interface {
	// LoadEpisodes returns all persisted episodes.
	LoadEpisodes(ctx context.Context) ([]domain.Episode, error)

	// UpsertEpisode inserts the episode or overwrites the existing one
	// with the same ID.
	UpsertEpisode(ctx context.Context, episode domain.Episode) error

	// LoadProcessedIDs returns the set of paper IDs that completed the
	// pipeline.
	LoadProcessedIDs(ctx context.Context) (map[string]bool, error)

	// MarkProcessed adds a paper ID to the processed set. Adding an ID
	// twice is a no-op.
	MarkProcessed(ctx context.Context, paperID string) error
}
