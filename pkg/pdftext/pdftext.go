// Package pdftext downloads PDFs and turns them into clean plain text
// suitable for prompting a language model.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"paperradio/pkg/domain"
	"paperradio/pkg/httpclient"

	"github.com/ledongthuc/pdf"
)

// MaxPDFSize caps PDF downloads at 50MB.
const MaxPDFSize = 50 * 1024 * 1024

// TruncationMarker is appended whenever extracted text is cut to fit
// the character budget.
const TruncationMarker = "\n\n[Content truncated due to length...]"

var (
	// ErrNotPDF means the payload failed the content-type and magic-byte checks.
	ErrNotPDF = errors.New("payload is not a PDF")
	// ErrNoText means no page of the document yielded any text.
	ErrNoText = errors.New("no text could be extracted from PDF")
)

var pdfMagic = []byte("%PDF")

// Downloader fetches PDFs over HTTP with size and content validation.
type Downloader struct {
	client *httpclient.HTTPClient
}

// NewDownloader creates a Downloader with a 60 second timeout.
func NewDownloader() *Downloader {
	return &Downloader{client: httpclient.NewClient(60 * time.Second)}
}

// Download fetches a PDF, rejecting oversized payloads (without reading
// the body when the server advertises the size) and anything that is
// not actually a PDF.
func (d *Downloader) Download(url string) ([]byte, error) {
	data, contentType, err := d.client.DownloadLimited(url, MaxPDFSize)
	if err != nil {
		return nil, fmt.Errorf("download pdf: %w", err)
	}

	if !strings.Contains(strings.ToLower(contentType), "pdf") && !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: content-type %q", ErrNotPDF, contentType)
	}

	return data, nil
}

// Extract pulls plain text out of PDF bytes, page by page, joining
// pages with paragraph breaks and cleaning up whitespace.
func Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // a single broken page should not sink the document
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", ErrNoText
	}

	return Clean(strings.Join(pages, "\n\n")), nil
}

// ExtractFromPaper downloads the paper's own PDF URL and extracts text.
// This path is used when the paper links its PDF directly instead of
// relying on the drive folder.
func (d *Downloader) ExtractFromPaper(paper domain.Paper) (string, error) {
	if !paper.HasAccessiblePDF() {
		return "", ErrNotPDF
	}
	data, err := d.Download(paper.PDFURL)
	if err != nil {
		return "", err
	}
	return Extract(data)
}

var runPattern = regexp.MustCompile(`[ \t]+`)

// Clean collapses runs of whitespace within lines, reduces runs of
// blank lines to a single one, and strips leading/trailing whitespace.
func Clean(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(runPattern.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Truncate cuts text to at most maxChars bytes plus the truncation
// marker, never splitting a multi-byte character. The cut lands on the
// last paragraph boundary past 80% of the budget when one exists,
// otherwise it is a hard cut.
func Truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	truncated := text[:cut]
	if idx := strings.LastIndex(truncated, "\n\n"); idx > maxChars*8/10 {
		truncated = truncated[:idx]
	}

	return truncated + TruncationMarker
}
