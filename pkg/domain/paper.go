package domain

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Paper represents one academic work from the input feed. The PDF URL
// is derived once at construction time; Papers are immutable afterwards.
type Paper struct {
	ID            string
	Title         string
	URL           string
	ExternalURL   string
	ContentText   string
	ContentHTML   string
	DatePublished string
	Authors       []string
	PDFURL        string
}

// NewPaper builds a Paper and derives its PDF URL by inspecting the
// external URL, any links embedded in the HTML content, and finally the
// main URL.
func NewPaper(id, title, url, externalURL, contentText, contentHTML, datePublished string, authors []string) Paper {
	p := Paper{
		ID:            id,
		Title:         title,
		URL:           url,
		ExternalURL:   externalURL,
		ContentText:   contentText,
		ContentHTML:   contentHTML,
		DatePublished: datePublished,
		Authors:       authors,
	}
	p.PDFURL = p.findPDFURL()
	return p
}

// HasAccessiblePDF reports whether a candidate PDF URL was found.
func (p Paper) HasAccessiblePDF() bool {
	return p.PDFURL != ""
}

// FirstAuthorSurname returns the last word of the first author's name,
// which is the surname for the overwhelming majority of feed entries.
func (p Paper) FirstAuthorSurname() string {
	if len(p.Authors) == 0 {
		return ""
	}
	parts := strings.Fields(p.Authors[0])
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Year returns the publication year as a 4-digit string, scanning
// date_published first and falling back to the paper ID (IDs such as
// "bibtex:Matias2025-px" embed the year). Empty if neither carries one.
func (p Paper) Year() string {
	if y := yearPattern.FindString(p.DatePublished); y != "" {
		return y
	}
	return yearPattern.FindString(p.ID)
}

func (p Paper) findPDFURL() string {
	if p.ExternalURL != "" && isPDFURL(p.ExternalURL) {
		return p.ExternalURL
	}
	if p.ContentHTML != "" {
		if links := extractPDFLinks(p.ContentHTML); len(links) > 0 {
			return links[0]
		}
	}
	if p.URL != "" && isPDFURL(p.URL) {
		return p.URL
	}
	return ""
}

// isPDFURL checks whether a URL likely points directly at a PDF.
func isPDFURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.Contains(lower, "/pdf/") ||
		strings.Contains(lower, "arxiv.org/pdf") ||
		strings.Contains(lower, ".pdf?") ||
		strings.Contains(lower, "journals.sagepub.com/doi/reader/")
}

// extractPDFLinks pulls candidate PDF hrefs out of HTML content,
// preserving document order.
func extractPDFLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		lower := strings.ToLower(href)
		if strings.Contains(lower, ".pdf") || strings.Contains(lower, "arxiv.org/pdf") {
			links = append(links, href)
		}
	})
	return links
}
