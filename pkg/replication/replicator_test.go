package replication

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paperradio/pkg/domain"
	"paperradio/pkg/store"
)

func fileStore(t *testing.T) *store.FileStore {
	t.Helper()
	dir := t.TempDir()
	return store.NewFileStore(filepath.Join(dir, "episodes.json"), filepath.Join(dir, "processed.json"))
}

func episode(id string) domain.Episode {
	return domain.Episode{
		ID:      id,
		Title:   "Research Radio: " + id,
		PubDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewReplicator_RequiresStores(t *testing.T) {
	if _, err := NewReplicator(Config{Source: fileStore(t)}); err == nil {
		t.Error("missing target must be rejected")
	}
	if _, err := NewReplicator(Config{Target: fileStore(t)}); err == nil {
		t.Error("missing source must be rejected")
	}
}

func TestReplicate_CopiesAndSkipsExisting(t *testing.T) {
	ctx := context.Background()
	src := fileStore(t)
	dst := fileStore(t)

	for _, id := range []string{"bibtex:a", "bibtex:b"} {
		if err := src.UpsertEpisode(ctx, episode(id)); err != nil {
			t.Fatal(err)
		}
		if err := src.MarkProcessed(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	// Target already holds one episode with local edits; replication
	// must not overwrite it.
	existing := episode("bibtex:a")
	existing.Title = "edited locally"
	if err := dst.UpsertEpisode(ctx, existing); err != nil {
		t.Fatal(err)
	}

	r, err := NewReplicator(Config{Source: src, Target: dst})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Replicate(ctx); err != nil {
		t.Fatalf("Replicate failed: %v", err)
	}

	episodes, err := dst.LoadEpisodes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 2 {
		t.Fatalf("target has %d episodes, want 2", len(episodes))
	}
	byID := map[string]domain.Episode{}
	for _, ep := range episodes {
		byID[ep.ID] = ep
	}
	if byID["bibtex:a"].Title != "edited locally" {
		t.Error("existing target episode was overwritten")
	}
	if byID["bibtex:b"].Title != "Research Radio: bibtex:b" {
		t.Errorf("copied episode = %+v", byID["bibtex:b"])
	}

	processed, err := dst.LoadProcessedIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !processed["bibtex:a"] || !processed["bibtex:b"] {
		t.Errorf("processed set = %v", processed)
	}
}

func TestReplicate_Idempotent(t *testing.T) {
	ctx := context.Background()
	src := fileStore(t)
	dst := fileStore(t)

	if err := src.UpsertEpisode(ctx, episode("bibtex:a")); err != nil {
		t.Fatal(err)
	}

	r, err := NewReplicator(Config{Source: src, Target: dst})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := r.Replicate(ctx); err != nil {
			t.Fatal(err)
		}
	}

	episodes, err := dst.LoadEpisodes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 1 {
		t.Errorf("target has %d episodes after two runs, want 1", len(episodes))
	}
}
