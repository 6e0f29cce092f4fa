// Package feedgen renders the episode store into an RSS 2.0 podcast
// feed with iTunes extensions.
package feedgen

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"paperradio/pkg/config"
	"paperradio/pkg/domain"

	"github.com/eduncan911/podcast"
)

// Generator renders podcast feeds from episode lists using the
// configured podcast metadata.
type Generator struct {
	cfg *config.Config
}

// NewGenerator creates a feed generator.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Render writes the feed document for the given episodes, newest first.
func (g *Generator) Render(episodes []domain.Episode, w io.Writer) error {
	sorted := make([]domain.Episode, len(episodes))
	copy(sorted, episodes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PubDate.After(sorted[j].PubDate)
	})

	link := g.cfg.PodcastWebsite
	if link == "" {
		link = "https://github.com/" + g.cfg.GitHubRepo
	}

	now := time.Now().UTC()
	p := podcast.New(g.cfg.PodcastTitle, link, g.cfg.PodcastDescription, nil, &now)
	p.Language = "en"
	p.IExplicit = "no"
	p.AddAuthor(g.cfg.PodcastAuthor, g.cfg.PodcastEmail)
	p.AddCategory("Science", nil)
	p.AddSummary(g.cfg.PodcastDescription)
	if g.cfg.PodcastWebsite != "" {
		p.AddImage(g.cfg.PodcastWebsite + "/cover.png")
	}

	for _, ep := range sorted {
		pubDate := ep.PubDate

		// Early store rows may lack a description; the encoder rejects
		// empty ones, and a single bad row must not sink the feed.
		description := ep.Description
		if description == "" {
			description = ep.Title
		}

		item := podcast.Item{
			GUID:        ep.ID,
			Title:       ep.Title,
			Description: description,
			PubDate:     &pubDate,
		}
		item.AddEnclosure(ep.AudioURL, podcast.MP3, ep.AudioSize)

		item.IAuthor = g.cfg.PodcastAuthor
		if len(ep.Authors) > 0 {
			item.IAuthor = strings.Join(ep.Authors, ", ")
		}
		item.IDuration = FormatDuration(ep.Duration)
		item.AddSummary(truncateSummary(description))

		if _, err := p.AddItem(item); err != nil {
			return fmt.Errorf("add episode %s: %w", ep.ID, err)
		}
	}

	return p.Encode(w)
}

// WriteFile renders the feed to a file on disk.
func (g *Generator) WriteFile(episodes []domain.Episode, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := g.Render(episodes, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatDuration formats seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// truncateSummary keeps the iTunes summary under its 4000-char limit.
func truncateSummary(text string) string {
	if len(text) <= 4000 {
		return text
	}
	return text[:4000]
}
