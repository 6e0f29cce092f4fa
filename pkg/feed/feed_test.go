package feed

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const feedJSON = `{
	"version": "https://jsonfeed.org/version/1.1",
	"title": "toread",
	"items": [
		{
			"id": "bibtex:Matias2025-px",
			"title": "Humanizing Technology Governance",
			"url": "https://example.org/paper/1",
			"external_url": "https://arxiv.org/pdf/2501.00001",
			"content_text": "A study of governance.",
			"date_published": "2025-02-01T00:00:00Z",
			"authors": [{"name": "J. Nathan Matias"}]
		},
		{
			"id": "bibtex:Smith2024-ab",
			"title": "Platform Moderation at Scale",
			"url": "https://example.org/paper/2",
			"content_html": "<p>Abstract here. <a href=\"https://example.org/files/smith2024.pdf\">Full text</a></p>",
			"date_published": "2024-06-15T00:00:00Z",
			"authors": ["Jane Smith", {"name": "Bob Jones"}]
		},
		{
			"id": "bibtex:Anon2023-zz",
			"url": "https://example.org/paper/3"
		}
	]
}`

func newTestReader(t *testing.T, status int, body string) *Reader {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewReader(server.URL)
}

func TestFetch(t *testing.T) {
	papers, err := newTestReader(t, http.StatusOK, feedJSON).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("got %d papers, want 3", len(papers))
	}

	first := papers[0]
	if first.ID != "bibtex:Matias2025-px" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.PDFURL != "https://arxiv.org/pdf/2501.00001" {
		t.Errorf("external arxiv URL should be the PDF URL, got %q", first.PDFURL)
	}
	if !first.HasAccessiblePDF() {
		t.Error("paper with arxiv external_url should have an accessible PDF")
	}
	if first.Year() != "2025" {
		t.Errorf("Year = %q, want 2025", first.Year())
	}
	if first.FirstAuthorSurname() != "Matias" {
		t.Errorf("surname = %q, want Matias", first.FirstAuthorSurname())
	}
}

func TestFetch_MixedAuthorForms(t *testing.T) {
	papers, err := newTestReader(t, http.StatusOK, feedJSON).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	second := papers[1]
	if len(second.Authors) != 2 {
		t.Fatalf("got %d authors, want 2", len(second.Authors))
	}
	if second.Authors[0] != "Jane Smith" || second.Authors[1] != "Bob Jones" {
		t.Errorf("authors = %v", second.Authors)
	}
	if second.PDFURL != "https://example.org/files/smith2024.pdf" {
		t.Errorf("PDF URL should come from content_html links, got %q", second.PDFURL)
	}
}

func TestFetch_DefaultsForMissingFields(t *testing.T) {
	papers, err := newTestReader(t, http.StatusOK, feedJSON).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	third := papers[2]
	if third.Title != "Untitled" {
		t.Errorf("missing title should default to Untitled, got %q", third.Title)
	}
	if len(third.Authors) != 0 {
		t.Errorf("expected no authors, got %v", third.Authors)
	}
	if third.HasAccessiblePDF() {
		t.Errorf("plain URL is not a PDF link, got %q", third.PDFURL)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	if _, err := newTestReader(t, http.StatusInternalServerError, "boom").Fetch(); err == nil {
		t.Error("expected an error for a 500 response")
	}
}

func TestFetch_MalformedJSON(t *testing.T) {
	if _, err := newTestReader(t, http.StatusOK, "{not json").Fetch(); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
