// Package validate cross-checks the published assets, the episode
// store, the processed set, and the rendered feed document for
// consistency. It is read-only: nothing here mutates state.
package validate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"paperradio/pkg/domain"
	"paperradio/pkg/release"
	"paperradio/pkg/store"

	"github.com/mmcdole/gofeed"
)

// Result collects every inconsistency found by a validation pass.
type Result struct {
	AssetsWithoutEpisodes    []string // asset exists, no episode
	EpisodesWithoutAssets    []string // episode exists, no asset
	ProcessedWithoutEpisodes []string // in processed set, not in episodes
	EpisodesWithoutProcessed []string // in episodes, not in processed set
	FeedMismatches           []string // feed document disagrees with store

	// Queue diagnostics.
	QueueDepth   int
	QueueETA     time.Duration
	NextEligible time.Time
}

// HasIssues reports whether any cross-check failed. Queue diagnostics
// are informational and never count as issues.
func (r *Result) HasIssues() bool {
	return len(r.AssetsWithoutEpisodes) > 0 ||
		len(r.EpisodesWithoutAssets) > 0 ||
		len(r.ProcessedWithoutEpisodes) > 0 ||
		len(r.EpisodesWithoutProcessed) > 0 ||
		len(r.FeedMismatches) > 0
}

// Report writes a human-readable validation report.
func (r *Result) Report(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "VALIDATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if !r.HasIssues() {
		fmt.Fprintln(w, "\nAll checks passed! No sync issues found.")
	}

	section := func(title, explanation string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s (%d):\n", title, len(items))
		fmt.Fprintf(w, "   %s\n", explanation)
		for _, item := range items {
			fmt.Fprintf(w, "   - %s\n", item)
		}
	}

	section("Assets WITHOUT episodes", "These audio files exist in the release store but have no episode entry.", r.AssetsWithoutEpisodes)
	section("Episodes WITHOUT assets", "These episodes reference non-existent audio files.", r.EpisodesWithoutAssets)
	section("Processed papers WITHOUT episodes", "These papers were marked as processed but have no episode.", r.ProcessedWithoutEpisodes)
	section("Episodes NOT in processed set", "These episodes exist but their paper was never marked processed.", r.EpisodesWithoutProcessed)
	section("Feed mismatches", "The rendered feed document disagrees with the episode store.", r.FeedMismatches)

	if r.QueueDepth > 0 {
		fmt.Fprintf(w, "\nQueue: %d eligible paper(s) waiting; estimated drain time %s (next eligible publish: %s)\n",
			r.QueueDepth, r.QueueETA, r.NextEligible.Format(time.RFC3339))
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
}

// CandidateLister supplies the currently eligible unprocessed papers
// for queue diagnostics, typically the pipeline's selection stage.
type CandidateLister interface {
	Candidates(ctx context.Context) (candidates, unprocessed []domain.Paper, err error)
}

// AssetLister exposes the release store listing.
type AssetLister interface {
	ListAssets(ctx context.Context) (map[string]release.Asset, error)
}

// Validator runs the consistency checks.
type Validator struct {
	Store       store.Store
	Assets      AssetLister
	FeedPath    string
	Candidates  CandidateLister // optional; enables queue diagnostics
	MinInterval time.Duration
	Now         func() time.Time
}

// Run performs all cross-checks and returns the collected result.
func (v *Validator) Run(ctx context.Context) (*Result, error) {
	episodes, err := v.Store.LoadEpisodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	processed, err := v.Store.LoadProcessedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load processed set: %w", err)
	}
	assets, err := v.Assets.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list release assets: %w", err)
	}
	log.Printf("Loaded %d episodes, %d processed papers, %d hosted assets",
		len(episodes), len(processed), len(assets))

	result := &Result{}

	episodeAssetKeys := make(map[string]bool, len(episodes))
	episodeIDs := make(map[string]bool, len(episodes))
	for _, ep := range episodes {
		episodeIDs[ep.ID] = true
		episodeAssetKeys[assetKey(ep.ID)] = true
	}

	for key := range assets {
		if !episodeAssetKeys[key] {
			result.AssetsWithoutEpisodes = append(result.AssetsWithoutEpisodes, key+".mp3")
		}
	}
	for _, ep := range episodes {
		if _, ok := assets[assetKey(ep.ID)]; !ok {
			result.EpisodesWithoutAssets = append(result.EpisodesWithoutAssets, ep.ID)
		}
	}
	for id := range processed {
		if !episodeIDs[id] {
			result.ProcessedWithoutEpisodes = append(result.ProcessedWithoutEpisodes, id)
		}
	}
	for _, ep := range episodes {
		if !processed[ep.ID] {
			result.EpisodesWithoutProcessed = append(result.EpisodesWithoutProcessed, ep.ID)
		}
	}

	sort.Strings(result.AssetsWithoutEpisodes)
	sort.Strings(result.EpisodesWithoutAssets)
	sort.Strings(result.ProcessedWithoutEpisodes)
	sort.Strings(result.EpisodesWithoutProcessed)

	result.FeedMismatches = v.checkFeed(episodes)

	if v.Candidates != nil {
		if err := v.queueDiagnostics(ctx, episodes, result); err != nil {
			log.Printf("Queue diagnostics unavailable: %v", err)
		}
	}

	return result, nil
}

// checkFeed parses the rendered feed document and compares its item
// count against the episode store.
func (v *Validator) checkFeed(episodes []domain.Episode) []string {
	f, err := os.Open(v.FeedPath)
	if os.IsNotExist(err) {
		if len(episodes) == 0 {
			return nil
		}
		return []string{fmt.Sprintf("feed document %s missing but store has %d episodes", v.FeedPath, len(episodes))}
	}
	if err != nil {
		return []string{fmt.Sprintf("cannot read feed document: %v", err)}
	}
	defer f.Close()

	parsed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return []string{fmt.Sprintf("cannot parse feed document: %v", err)}
	}

	var mismatches []string
	if len(parsed.Items) != len(episodes) {
		mismatches = append(mismatches, fmt.Sprintf("feed has %d items, store has %d episodes", len(parsed.Items), len(episodes)))
	}

	feedGUIDs := make(map[string]bool, len(parsed.Items))
	for _, item := range parsed.Items {
		feedGUIDs[item.GUID] = true
	}
	for _, ep := range episodes {
		if !feedGUIDs[ep.ID] {
			mismatches = append(mismatches, fmt.Sprintf("episode %s missing from feed", ep.ID))
		}
	}

	return mismatches
}

// queueDiagnostics computes how many eligible papers are waiting and
// how long the rate-limit policy will take to drain them.
func (v *Validator) queueDiagnostics(ctx context.Context, episodes []domain.Episode, result *Result) error {
	candidates, _, err := v.Candidates.Candidates(ctx)
	if err != nil {
		return err
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	result.QueueDepth = len(candidates)
	result.QueueETA = time.Duration(len(candidates)) * v.MinInterval

	next := now()
	if len(episodes) > 0 {
		latest := episodes[0].PubDate
		for _, ep := range episodes[1:] {
			if ep.PubDate.After(latest) {
				latest = ep.PubDate
			}
		}
		if eligible := latest.Add(v.MinInterval); eligible.After(next) {
			next = eligible
		}
	}
	result.NextEligible = next
	return nil
}

// assetKey mirrors the asset naming rule: release assets are keyed by
// the sanitized paper ID without extension.
func assetKey(episodeID string) string {
	return strings.TrimSuffix(release.AssetName(episodeID), ".mp3")
}
