package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Release backends supported by the asset publisher.
const (
	ReleaseBackendGitHub   = "github"
	ReleaseBackendSupabase = "supabase"
)

// Config holds every externally supplied setting the pipeline needs.
// It is built once at process start and passed by reference into each
// component's constructor; nothing reads the environment after Load.
type Config struct {
	// Google Cloud / Drive
	CredentialsPath string
	DriveFolderID   string

	// Gemini API
	GeminiAPIKey string

	// Release hosting
	ReleaseBackend string
	GitHubToken    string
	GitHubRepo     string // "owner/name"
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// Feed input
	FeedURL string

	// Podcast metadata
	PodcastTitle       string
	PodcastDescription string
	PodcastAuthor      string
	PodcastEmail       string
	PodcastWebsite     string

	// TTS voices
	HostVoice   string
	CohostVoice string

	// Paths
	DataDir       string
	AudioDir      string
	DocsDir       string
	ProcessedFile string
	EpisodesFile  string
	FeedFile      string

	// Policy knobs
	MinHoursBetweenEpisodes float64
	MaxPDFAgeDays           int
	MaxTextChars            int
}

// Load builds a Config from the environment, applying the same defaults
// the hosted deployment uses. It does not verify credentials; call
// Validate before starting a run.
func Load() *Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}

	dataDir := getenv("DATA_DIR", filepath.Join(root, "data"))
	docsDir := getenv("DOCS_DIR", filepath.Join(root, "docs"))

	return &Config{
		CredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:   getenv("GOOGLE_DRIVE_FOLDER_ID", "1gluNDqRQkyqxa_WIASaaoNEItrDlETkn"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		ReleaseBackend: getenv("RELEASE_BACKEND", ReleaseBackendGitHub),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:     os.Getenv("GITHUB_REPO"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: getenv("SUPABASE_BUCKET", "episodes"),

		FeedURL: getenv("FEED_URL", "https://raw.githubusercontent.com/fabiogiglietto/toread/main/output/feed.json"),

		PodcastTitle:       getenv("PODCAST_TITLE", "Research Radio"),
		PodcastDescription: getenv("PODCAST_DESCRIPTION", "AI-generated podcast discussions of academic papers"),
		PodcastAuthor:      getenv("PODCAST_AUTHOR", "Research Radio"),
		PodcastEmail:       os.Getenv("PODCAST_EMAIL"),
		PodcastWebsite:     os.Getenv("PODCAST_WEBSITE"),

		HostVoice:   getenv("TTS_HOST_VOICE", "Kore"),
		CohostVoice: getenv("TTS_COHOST_VOICE", "Charon"),

		DataDir:       dataDir,
		AudioDir:      getenv("AUDIO_DIR", filepath.Join(root, "audio")),
		DocsDir:       docsDir,
		ProcessedFile: filepath.Join(dataDir, "processed.json"),
		EpisodesFile:  filepath.Join(dataDir, "episodes.json"),
		FeedFile:      filepath.Join(docsDir, "feed.xml"),

		MinHoursBetweenEpisodes: getenvFloat("MIN_HOURS_BETWEEN_EPISODES", 24),
		MaxPDFAgeDays:           getenvInt("MAX_PDF_AGE_DAYS", 30),
		MaxTextChars:            getenvInt("MAX_TEXT_CHARS", 80000),
	}
}

// Validate checks that every credential the configured backends need is
// present. A failure here is fatal: the run must abort before any
// processing starts.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if c.CredentialsPath == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is not set")
	}

	switch c.ReleaseBackend {
	case ReleaseBackendGitHub:
		if c.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN is not set")
		}
		if c.GitHubRepo == "" {
			return fmt.Errorf("GITHUB_REPO is not set")
		}
	case ReleaseBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown release backend %q", c.ReleaseBackend)
	}

	return nil
}

// EnsureDirs creates the local directories the pipeline writes into.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.AudioDir, c.DocsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getenv reads an environment variable or returns a default value.
func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
