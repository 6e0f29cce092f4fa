// Package pipeline sequences the paper-to-podcast stages and applies
// the publication rate limit. Execution is strictly sequential: one
// process, one run, at most one paper.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"paperradio/pkg/config"
	"paperradio/pkg/domain"
	"paperradio/pkg/feedgen"
	"paperradio/pkg/release"
	"paperradio/pkg/store"
)

// PaperSource fetches the input feed.
type PaperSource interface {
	Fetch() ([]domain.Paper, error)
}

// PDFLocator finds and reads paper PDFs from the drive folder.
type PDFLocator interface {
	FindPDF(ctx context.Context, paper domain.Paper) (domain.DriveFile, error)
	PaperText(ctx context.Context, paper domain.Paper, maxChars int) (string, domain.DriveFile, error)
}

// ScriptGenerator produces the two-host dialogue for a paper.
type ScriptGenerator interface {
	Generate(ctx context.Context, title string, authors []string, paperText string) (*domain.Script, error)
}

// AudioSynthesizer renders a script to an audio file.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, script *domain.Script, outputPath string) error
}

// DurationFunc measures an audio file's length in seconds.
type DurationFunc func(path string) int

// Summary reports what a run did.
type Summary struct {
	Processed int
	Failed    int
	Queued    int
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg       *config.Config
	source    PaperSource
	locator   PDFLocator
	scripts   ScriptGenerator
	audio     AudioSynthesizer
	duration  DurationFunc
	publisher release.Publisher
	store     store.Store
	feeds     *feedgen.Generator
	now       func() time.Time
}

// New builds a pipeline from its collaborators.
func New(cfg *config.Config, source PaperSource, locator PDFLocator, scripts ScriptGenerator,
	audio AudioSynthesizer, duration DurationFunc, publisher release.Publisher,
	st store.Store, feeds *feedgen.Generator) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		source:    source,
		locator:   locator,
		scripts:   scripts,
		audio:     audio,
		duration:  duration,
		publisher: publisher,
		store:     st,
		feeds:     feeds,
		now:       time.Now,
	}
}

// SetClock overrides the pipeline's clock. Tests only.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// CanPublish checks the rate-limit gate: enough hours must have passed
// since the most recent episode's publication date. The second return
// value is a human-readable reason.
func CanPublish(episodes []domain.Episode, now time.Time, minInterval time.Duration) (bool, string) {
	if len(episodes) == 0 {
		return true, "No existing episodes"
	}

	latest := episodes[0].PubDate
	for _, ep := range episodes[1:] {
		if ep.PubDate.After(latest) {
			latest = ep.PubDate
		}
	}

	elapsed := now.Sub(latest)
	if elapsed >= minInterval {
		return true, fmt.Sprintf("%.1f hours since last episode", elapsed.Hours())
	}

	remaining := minInterval - elapsed
	return false, fmt.Sprintf("Only %.1f hours since last episode. Wait %.1f more hours.",
		elapsed.Hours(), remaining.Hours())
}

// Candidates runs the selection half of a run: fetch the feed, drop
// processed papers, and keep only papers with a recently modified PDF
// match. Shared with the validator's dry-run mode.
func (p *Pipeline) Candidates(ctx context.Context) (candidates, unprocessed []domain.Paper, err error) {
	papers, err := p.source.Fetch()
	if err != nil {
		return nil, nil, fmt.Errorf("fetch feed: %w", err)
	}
	log.Printf("Feed contains %d papers", len(papers))

	processed, err := p.store.LoadProcessedIDs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load processed set: %w", err)
	}

	unprocessed, err = FilterPapers(ctx, papers, &ProcessedFilter{IDs: processed})
	if err != nil {
		return nil, nil, err
	}

	candidates, err = FilterPapers(ctx, unprocessed, &RecentPDFFilter{
		Locator: p.locator,
		MaxAge:  time.Duration(p.cfg.MaxPDFAgeDays) * 24 * time.Hour,
		Now:     p.now,
	})
	if err != nil {
		return nil, nil, err
	}

	return candidates, unprocessed, nil
}

// Run executes one pipeline invocation: select candidates, check the
// rate gate, process at most one paper, and regenerate the feed. Stage
// failures inside paper processing are converted to a skip; only
// pre-run errors (feed fetch, store access) abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	candidates, unprocessed, err := p.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Queued: len(unprocessed)}

	if len(candidates) == 0 {
		log.Printf("No new papers with matching PDFs found.")
		return summary, nil
	}

	log.Printf("Found %d new paper(s) with PDFs:", len(candidates))
	for i, paper := range candidates {
		log.Printf("  %d. %s", i+1, paper.Title)
	}

	episodes, err := p.store.LoadEpisodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}

	ok, reason := CanPublish(episodes, p.now(), p.minInterval())
	log.Printf("Rate limit check: %s", reason)
	if !ok {
		log.Printf("Skipping processing to avoid overloading listeners. Papers will be queued for future runs.")
		return summary, nil
	}

	// Process exactly one paper per run; the rest stay queued. This
	// bounds publication cadence even when several papers are eligible.
	paper := candidates[0]
	log.Printf("Processing 1 paper (rate limit: 1 per %.0f hours)", p.cfg.MinHoursBetweenEpisodes)
	if remaining := len(candidates) - 1; remaining > 0 {
		log.Printf("  %d paper(s) queued for future runs", remaining)
	}

	if err := p.processPaper(ctx, paper); err != nil {
		log.Printf("Failed to process %s: %v", paper.ID, err)
		summary.Failed++
	} else {
		summary.Processed++
		summary.Queued--
	}

	if err := p.regenerateFeed(ctx); err != nil {
		return summary, err
	}

	return summary, nil
}

// DryRun replays the selection stages and the rate gate without
// processing anything: no audio, no uploads, no store writes.
func (p *Pipeline) DryRun(ctx context.Context) (*Summary, error) {
	candidates, unprocessed, err := p.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Queued: len(unprocessed)}

	log.Printf("[dry run] %d candidate(s), %d unprocessed paper(s)", len(candidates), len(unprocessed))
	if len(candidates) == 0 {
		return summary, nil
	}

	episodes, err := p.store.LoadEpisodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	ok, reason := CanPublish(episodes, p.now(), p.minInterval())
	log.Printf("[dry run] rate limit check: %s", reason)
	if ok {
		log.Printf("[dry run] would process: %s (%s)", candidates[0].Title, candidates[0].ID)
	}
	return summary, nil
}

// processPaper runs the strict three-stage sequence for one paper:
// extract text, generate the podcast (script + audio), upload the
// asset. Any stage failure aborts this paper without writing an
// Episode or ProcessedSet entry.
func (p *Pipeline) processPaper(ctx context.Context, paper domain.Paper) error {
	log.Printf("============================================================")
	log.Printf("Processing: %s", paper.Title)
	log.Printf("ID: %s", paper.ID)
	log.Printf("Authors: %s", strings.Join(paper.Authors, ", "))

	log.Printf("[1/3] Extracting text from drive PDF...")
	text, _, err := p.locator.PaperText(ctx, paper, p.cfg.MaxTextChars)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	log.Printf("  Extracted %d characters", len(text))

	log.Printf("[2/3] Generating podcast...")
	script, err := p.scripts.Generate(ctx, paper.Title, paper.Authors, text)
	if err != nil {
		return fmt.Errorf("generate script: %w", err)
	}

	audioName := release.AssetName(paper.ID)
	audioPath := filepath.Join(p.cfg.AudioDir, audioName)
	if err := p.audio.Synthesize(ctx, script, audioPath); err != nil {
		return fmt.Errorf("synthesize audio: %w", err)
	}

	audioSize, duration := p.measure(audioPath, script)
	log.Printf("  Audio: %s (%.1fMB, %s)", audioName,
		float64(audioSize)/1024/1024, feedgen.FormatDuration(duration))

	log.Printf("[3/3] Uploading to release store...")
	audioURL, err := p.publisher.Upload(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("upload asset: %w", err)
	}

	episode := feedgen.EpisodeFromPaper(paper, p.cfg.PodcastTitle, audioURL, audioSize, duration, p.now())
	if err := p.store.UpsertEpisode(ctx, episode); err != nil {
		return fmt.Errorf("save episode: %w", err)
	}
	if err := p.store.MarkProcessed(ctx, paper.ID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	log.Printf("Successfully processed: %s", paper.Title)
	return nil
}

// measure reports the audio file's size and duration, falling back to
// the script's word-rate estimate when the file cannot be measured.
func (p *Pipeline) measure(audioPath string, script *domain.Script) (int64, int) {
	var size int64
	if info, err := statFile(audioPath); err == nil {
		size = info
	}

	duration := 0
	if p.duration != nil {
		duration = p.duration(audioPath)
	}
	if duration == 0 {
		duration = estimateScriptDuration(script)
	}
	return size, duration
}

func (p *Pipeline) regenerateFeed(ctx context.Context) error {
	episodes, err := p.store.LoadEpisodes(ctx)
	if err != nil {
		return fmt.Errorf("load episodes for feed: %w", err)
	}
	if err := p.feeds.WriteFile(episodes, p.cfg.FeedFile); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	log.Printf("Feed generated: %s", p.cfg.FeedFile)
	return nil
}

func (p *Pipeline) minInterval() time.Duration {
	return time.Duration(p.cfg.MinHoursBetweenEpisodes * float64(time.Hour))
}
