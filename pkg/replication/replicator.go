// Package replication copies episode data between store backends.
package replication

import (
	"context"
	"fmt"
	"log"

	"paperradio/pkg/store"
)

// Config wires the replication dependencies.
type Config struct {
	Source store.Store
	Target store.Store
}

// Replicator copies episodes and the processed set from one store
// backend to another.
//
// This is intentionally a one-shot, "copy everything" flow: the
// episode dataset is small (one per day at most), so there is no
// batching or parallelism.
type Replicator struct {
	source store.Store
	target store.Store
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	return &Replicator{
		source: cfg.Source,
		target: cfg.Target,
	}, nil
}

// Replicate reads all episodes and processed IDs from the source and
// upserts them into the target. Episodes already present in the target
// are skipped.
func (r *Replicator) Replicate(ctx context.Context) error {
	episodes, err := r.source.LoadEpisodes(ctx)
	if err != nil {
		return fmt.Errorf("load source episodes: %w", err)
	}

	existing, err := r.target.LoadEpisodes(ctx)
	if err != nil {
		return fmt.Errorf("load target episodes: %w", err)
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, ep := range existing {
		existingIDs[ep.ID] = true
	}

	log.Printf("Loaded %d episodes from source, %d already in target", len(episodes), len(existing))

	copied := 0
	for _, ep := range episodes {
		if existingIDs[ep.ID] {
			continue
		}
		if err := r.target.UpsertEpisode(ctx, ep); err != nil {
			return fmt.Errorf("copy episode %s: %w", ep.ID, err)
		}
		copied++
	}

	processed, err := r.source.LoadProcessedIDs(ctx)
	if err != nil {
		return fmt.Errorf("load source processed set: %w", err)
	}
	targetProcessed, err := r.target.LoadProcessedIDs(ctx)
	if err != nil {
		return fmt.Errorf("load target processed set: %w", err)
	}
	marked := 0
	for id := range processed {
		if targetProcessed[id] {
			continue
		}
		if err := r.target.MarkProcessed(ctx, id); err != nil {
			return fmt.Errorf("copy processed mark %s: %w", id, err)
		}
		marked++
	}

	log.Printf("Replication complete: copied %d episodes, %d processed marks", copied, marked)
	return nil
}
