package feedgen

import (
	"strings"
	"time"

	"paperradio/pkg/domain"
)

// EpisodeFromPaper builds the Episode record for a successfully
// processed paper. The description carries an APA7-style citation so
// listeners can find the full paper from the episode notes.
func EpisodeFromPaper(paper domain.Paper, podcastTitle, audioURL string, audioSize int64, duration int, pubDate time.Time) domain.Episode {
	year := paper.Year()
	if year == "" {
		year = pubDate.UTC().Format("2006")
	}

	citation := FormatAuthorsAPA7(paper.Authors) + " (" + year + "). " + paper.Title + "."
	if url := paperURL(paper); url != "" {
		citation += " " + url
	}

	return domain.Episode{
		ID:          paper.ID,
		Title:       podcastTitle + ": " + paper.Title,
		Description: "AI-generated podcast discussion.\n\nReference:\n" + citation,
		AudioURL:    audioURL,
		AudioSize:   audioSize,
		Duration:    duration,
		PubDate:     pubDate.UTC(),
		Authors:     paper.Authors,
	}
}

func paperURL(paper domain.Paper) string {
	if paper.ExternalURL != "" {
		return paper.ExternalURL
	}
	return paper.URL
}

// FormatAuthorsAPA7 renders an author list in APA7 style:
// "Last, F. M., & Last, F." with an ampersand before the final author.
func FormatAuthorsAPA7(authors []string) string {
	if len(authors) == 0 {
		return "Unknown"
	}

	formatted := make([]string, len(authors))
	for i, a := range authors {
		formatted[i] = apa7Name(a)
	}

	switch len(formatted) {
	case 1:
		return formatted[0]
	case 2:
		return formatted[0] + " & " + formatted[1]
	default:
		return strings.Join(formatted[:len(formatted)-1], ", ") + ", & " + formatted[len(formatted)-1]
	}
}

// apa7Name converts "First Middle Last" to "Last, F. M.".
func apa7Name(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	last := parts[len(parts)-1]
	initials := make([]string, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		initials = append(initials, strings.ToUpper(string([]rune(p)[0]))+".")
	}
	return last + ", " + strings.Join(initials, " ")
}
