package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EpisodeIDPrefix namespaces episode IDs so they cannot collide with
// raw feed item IDs from other sources.
const EpisodeIDPrefix = "bibtex:"

// Episode is one published podcast unit derived from one Paper.
// Episodes are keyed by ID; re-processing the same paper overwrites the
// existing entry (last-write-wins upsert).
type Episode struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AudioURL    string    `json:"audio_url"`
	AudioSize   int64     `json:"audio_size"`
	Duration    int       `json:"duration"` // seconds
	PubDate     time.Time `json:"pub_date"`
	Authors     []string  `json:"authors"`
}

// episodeJSON mirrors Episode with pub_date as a string so we can accept
// both offset-qualified and naive ISO-8601 timestamps on load.
type episodeJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AudioURL    string   `json:"audio_url"`
	AudioSize   int64    `json:"audio_size"`
	Duration    int      `json:"duration"`
	PubDate     string   `json:"pub_date"`
	Authors     []string `json:"authors"`
}

// MarshalJSON writes pub_date in RFC 3339 UTC.
func (e Episode) MarshalJSON() ([]byte, error) {
	return json.Marshal(episodeJSON{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		AudioURL:    e.AudioURL,
		AudioSize:   e.AudioSize,
		Duration:    e.Duration,
		PubDate:     e.PubDate.UTC().Format(time.RFC3339),
		Authors:     e.Authors,
	})
}

// UnmarshalJSON parses pub_date as RFC 3339, falling back to a naive
// ISO-8601 timestamp which is assumed to be UTC. Either way the stored
// time is normalized to UTC.
func (e *Episode) UnmarshalJSON(data []byte) error {
	var raw episodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pubDate, err := parseEpisodeTime(raw.PubDate)
	if err != nil {
		return fmt.Errorf("episode %s: %w", raw.ID, err)
	}

	*e = Episode{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		AudioURL:    raw.AudioURL,
		AudioSize:   raw.AudioSize,
		Duration:    raw.Duration,
		PubDate:     pubDate,
		Authors:     raw.Authors,
	}
	return nil
}

func parseEpisodeTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable pub_date %q", value)
}
