package domain

import "testing"

func TestNewPaper_PDFURLFromExternalURL(t *testing.T) {
	cases := []struct {
		externalURL string
		want        string
	}{
		{"https://arxiv.org/pdf/2501.00001", "https://arxiv.org/pdf/2501.00001"},
		{"https://example.org/paper.pdf", "https://example.org/paper.pdf"},
		{"https://example.org/paper.pdf?download=1", "https://example.org/paper.pdf?download=1"},
		{"https://journals.sagepub.com/doi/reader/10.1177/123", "https://journals.sagepub.com/doi/reader/10.1177/123"},
		{"https://example.org/landing-page", ""},
	}
	for _, tc := range cases {
		p := NewPaper("id", "t", "", tc.externalURL, "", "", "", nil)
		if p.PDFURL != tc.want {
			t.Errorf("external_url %q: PDFURL = %q, want %q", tc.externalURL, p.PDFURL, tc.want)
		}
	}
}

func TestNewPaper_PDFURLFromContentHTML(t *testing.T) {
	html := `<p>See <a href="https://example.org/about">about</a> and
		<a href="https://example.org/files/first.pdf">first</a> then
		<a href="https://example.org/files/second.pdf">second</a>.</p>`
	p := NewPaper("id", "t", "", "https://example.org/landing", "", html, "", nil)
	if p.PDFURL != "https://example.org/files/first.pdf" {
		t.Errorf("PDFURL = %q, want the first PDF link in document order", p.PDFURL)
	}
}

func TestNewPaper_PDFURLFallsBackToMainURL(t *testing.T) {
	p := NewPaper("id", "t", "https://example.org/direct.pdf", "", "", "", "", nil)
	if p.PDFURL != "https://example.org/direct.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
}

func TestYear(t *testing.T) {
	cases := []struct {
		id   string
		date string
		want string
	}{
		{"bibtex:Matias2025-px", "2024-06-15T00:00:00Z", "2024"}, // date wins
		{"bibtex:Matias2025-px", "", "2025"},                     // ID fallback
		{"bibtex:nodigits", "", ""},
	}
	for _, tc := range cases {
		p := Paper{ID: tc.id, DatePublished: tc.date}
		if got := p.Year(); got != tc.want {
			t.Errorf("Year(%q, %q) = %q, want %q", tc.id, tc.date, got, tc.want)
		}
	}
}

func TestFirstAuthorSurname(t *testing.T) {
	cases := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"Jane Smith"}, "Smith"},
		{[]string{"J. Nathan Matias", "Other Person"}, "Matias"},
		{[]string{"Prince"}, "Prince"},
	}
	for _, tc := range cases {
		p := Paper{Authors: tc.authors}
		if got := p.FirstAuthorSurname(); got != tc.want {
			t.Errorf("FirstAuthorSurname(%v) = %q, want %q", tc.authors, got, tc.want)
		}
	}
}
