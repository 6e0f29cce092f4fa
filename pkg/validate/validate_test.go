package validate

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperradio/pkg/config"
	"paperradio/pkg/domain"
	"paperradio/pkg/feedgen"
	"paperradio/pkg/release"
	"paperradio/pkg/store"
)

// fakeAssets is an AssetLister serving a fixed asset map.
type fakeAssets struct {
	assets map[string]release.Asset
}

func (f *fakeAssets) ListAssets(ctx context.Context) (map[string]release.Asset, error) {
	return f.assets, nil
}

func asset(key string) map[string]release.Asset {
	return map[string]release.Asset{
		key: {Name: key + ".mp3", Size: 1024, URL: "https://example.org/" + key + ".mp3"},
	}
}

func episode(id string) domain.Episode {
	return domain.Episode{
		ID:          id,
		Title:       "Research Radio: " + id,
		Description: "AI-generated podcast discussion.",
		AudioURL:    "https://example.org/a.mp3",
		PubDate:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Authors:     []string{"Jane Smith"},
	}
}

// setup builds a file store, writes the given episodes and processed
// IDs, renders the matching feed file, and returns a ready Validator.
func setup(t *testing.T, episodes []domain.Episode, processedIDs []string, assets map[string]release.Asset) *Validator {
	t.Helper()
	dir := t.TempDir()

	st := store.NewFileStore(filepath.Join(dir, "episodes.json"), filepath.Join(dir, "processed.json"))
	ctx := context.Background()
	for _, ep := range episodes {
		if err := st.UpsertEpisode(ctx, ep); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range processedIDs {
		if err := st.MarkProcessed(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &config.Config{
		PodcastTitle:       "Research Radio",
		PodcastDescription: "desc",
		PodcastAuthor:      "Research Radio",
		GitHubRepo:         "example/podcast",
	}
	feedPath := filepath.Join(dir, "feed.xml")
	if err := feedgen.NewGenerator(cfg).WriteFile(episodes, feedPath); err != nil {
		t.Fatal(err)
	}

	return &Validator{
		Store:       st,
		Assets:      &fakeAssets{assets: assets},
		FeedPath:    feedPath,
		MinInterval: 24 * time.Hour,
	}
}

func TestRun_Consistent(t *testing.T) {
	v := setup(t,
		[]domain.Episode{episode("bibtex:a2025")},
		[]string{"bibtex:a2025"},
		asset("a2025"),
	)

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.HasIssues() {
		var buf bytes.Buffer
		result.Report(&buf)
		t.Errorf("consistent state reported issues:\n%s", buf.String())
	}
}

func TestRun_AssetWithoutEpisode(t *testing.T) {
	v := setup(t, nil, nil, asset("orphan2024"))

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.AssetsWithoutEpisodes) != 1 {
		t.Fatalf("AssetsWithoutEpisodes = %v", result.AssetsWithoutEpisodes)
	}
	if result.AssetsWithoutEpisodes[0] != "orphan2024.mp3" {
		t.Errorf("got %q", result.AssetsWithoutEpisodes[0])
	}
}

func TestRun_EpisodeWithoutAsset(t *testing.T) {
	v := setup(t,
		[]domain.Episode{episode("bibtex:a2025")},
		[]string{"bibtex:a2025"},
		nil,
	)

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.EpisodesWithoutAssets) != 1 || result.EpisodesWithoutAssets[0] != "bibtex:a2025" {
		t.Errorf("EpisodesWithoutAssets = %v", result.EpisodesWithoutAssets)
	}
}

func TestRun_ProcessedWithoutEpisode(t *testing.T) {
	v := setup(t, nil, []string{"bibtex:ghost2024"}, nil)

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.ProcessedWithoutEpisodes) != 1 || result.ProcessedWithoutEpisodes[0] != "bibtex:ghost2024" {
		t.Errorf("ProcessedWithoutEpisodes = %v", result.ProcessedWithoutEpisodes)
	}
}

func TestRun_EpisodeNotProcessed(t *testing.T) {
	v := setup(t,
		[]domain.Episode{episode("bibtex:a2025")},
		nil,
		asset("a2025"),
	)

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.EpisodesWithoutProcessed) != 1 || result.EpisodesWithoutProcessed[0] != "bibtex:a2025" {
		t.Errorf("EpisodesWithoutProcessed = %v", result.EpisodesWithoutProcessed)
	}
}

func TestRun_FeedMismatch(t *testing.T) {
	v := setup(t,
		[]domain.Episode{episode("bibtex:a2025")},
		[]string{"bibtex:a2025"},
		asset("a2025"),
	)

	// Add an episode after the feed was rendered so the store and the
	// document disagree.
	if err := v.Store.UpsertEpisode(context.Background(), episode("bibtex:b2025")); err != nil {
		t.Fatal(err)
	}
	if err := v.Store.MarkProcessed(context.Background(), "bibtex:b2025"); err != nil {
		t.Fatal(err)
	}

	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.FeedMismatches) == 0 {
		t.Fatal("stale feed should be reported")
	}
	joined := strings.Join(result.FeedMismatches, "; ")
	if !strings.Contains(joined, "bibtex:b2025") {
		t.Errorf("mismatch list should name the missing episode, got %q", joined)
	}
}

func TestReport(t *testing.T) {
	v := setup(t, nil, []string{"bibtex:ghost2024"}, nil)
	result, err := v.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result.Report(&buf)
	out := buf.String()

	if !strings.Contains(out, "bibtex:ghost2024") {
		t.Error("report should list the inconsistent ID")
	}
	if strings.Contains(out, "All checks passed") {
		t.Error("report must not claim success when issues exist")
	}
}
