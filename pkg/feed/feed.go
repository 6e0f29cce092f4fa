package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paperradio/pkg/domain"
	"paperradio/pkg/httpclient"

	readability "github.com/go-shiori/go-readability"
)

// Reader fetches the JSON feed of academic papers and parses it into
// Paper records.
type Reader struct {
	client  *httpclient.HTTPClient
	feedURL string
}

// NewReader creates a feed reader for the given URL.
func NewReader(feedURL string) *Reader {
	return &Reader{
		client:  httpclient.NewClient(30 * time.Second),
		feedURL: feedURL,
	}
}

// Fetch downloads and parses the feed.
func (r *Reader) Fetch() ([]domain.Paper, error) {
	resp, err := r.client.Get(r.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", r.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status code %d", r.feedURL, resp.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return parsePapers(doc), nil
}

// document is the JSON Feed subset this pipeline consumes.
type document struct {
	Items []item `json:"items"`
}

type item struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	ExternalURL   string   `json:"external_url"`
	ContentText   string   `json:"content_text"`
	ContentHTML   string   `json:"content_html"`
	DatePublished string   `json:"date_published"`
	Authors       []author `json:"authors"`
}

// author accepts both the JSON Feed object form {"name": ...} and the
// bare string form some feeds emit.
type author struct {
	Name string
}

func (a *author) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("author is neither string nor object: %w", err)
	}
	a.Name = obj.Name
	return nil
}

func parsePapers(doc document) []domain.Paper {
	papers := make([]domain.Paper, 0, len(doc.Items))
	for _, it := range doc.Items {
		authors := make([]string, 0, len(it.Authors))
		for _, a := range it.Authors {
			name := a.Name
			if name == "" {
				name = "Unknown"
			}
			authors = append(authors, name)
		}

		title := it.Title
		if title == "" {
			title = "Untitled"
		}

		contentText := it.ContentText
		if contentText == "" && it.ContentHTML != "" {
			contentText = extractText(it.ContentHTML)
		}

		papers = append(papers, domain.NewPaper(
			it.ID, title, it.URL, it.ExternalURL,
			contentText, it.ContentHTML, it.DatePublished, authors,
		))
	}
	return papers
}

// extractText derives plain text from HTML content for feeds that omit
// content_text. Failures just leave the text empty; the field is only
// used for episode descriptions.
func extractText(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
