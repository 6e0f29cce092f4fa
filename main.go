package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"paperradio/pkg/audio"
	"paperradio/pkg/config"
	"paperradio/pkg/drive"
	"paperradio/pkg/feed"
	"paperradio/pkg/feedgen"
	"paperradio/pkg/pipeline"
	"paperradio/pkg/release"
	"paperradio/pkg/script"
	"paperradio/pkg/store"
)

func main() {
	// Local development convenience; the hosted runner injects real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	ctx := context.Background()

	driveClient, err := drive.NewClient(ctx, cfg.CredentialsPath, cfg.DriveFolderID)
	if err != nil {
		log.Fatalf("Failed to create drive client: %v", err)
	}

	scripts, err := script.NewGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create script generator: %v", err)
	}

	synth, err := audio.NewSynthesizer(ctx, cfg.GeminiAPIKey, cfg.HostVoice, cfg.CohostVoice)
	if err != nil {
		log.Fatalf("Failed to create audio synthesizer: %v", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to create release publisher: %v", err)
	}

	st := store.NewFileStore(cfg.EpisodesFile, cfg.ProcessedFile)

	p := pipeline.New(cfg,
		feed.NewReader(cfg.FeedURL),
		driveClient,
		scripts,
		synth,
		audio.Duration,
		publisher,
		st,
		feedgen.NewGenerator(cfg),
	)

	summary, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	log.Printf("Run complete: %d processed, %d failed, %d queued",
		summary.Processed, summary.Failed, summary.Queued)
}

func newPublisher(cfg *config.Config) (release.Publisher, error) {
	switch cfg.ReleaseBackend {
	case config.ReleaseBackendSupabase:
		return release.NewSupabasePublisher(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	default:
		return release.NewGitHubPublisher(cfg.GitHubToken, cfg.GitHubRepo)
	}
}
