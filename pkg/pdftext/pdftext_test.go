package pdftext

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"paperradio/pkg/httpclient"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses spaces and tabs",
			in:   "hello    world\tagain",
			want: "hello world again",
		},
		{
			name: "reduces blank line runs",
			in:   "para one\n\n\n\npara two",
			want: "para one\n\npara two",
		},
		{
			name: "strips surrounding whitespace",
			in:   "\n\n  text  \n\n",
			want: "text",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate_UnderBudget(t *testing.T) {
	text := "short document"
	if got := Truncate(text, 100); got != text {
		t.Errorf("text under budget must pass through unchanged, got %q", got)
	}
}

func TestTruncate_CutsAtParagraphBoundary(t *testing.T) {
	// Build 100k characters of paragraphs and truncate to 80k. The cut
	// must land on a paragraph boundary past 80% of the budget, so the
	// result is between 64k and 80k characters plus the marker.
	para := strings.Repeat("x", 998) + "\n\n"
	text := strings.Repeat(para, 100) // 100,000 chars
	maxChars := 80000

	got := Truncate(text, maxChars)

	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatal("truncated text must end with the marker")
	}
	body := strings.TrimSuffix(got, TruncationMarker)
	if len(body) > maxChars {
		t.Errorf("body is %d chars, exceeds budget %d", len(body), maxChars)
	}
	if len(body) <= maxChars*8/10 {
		t.Errorf("body is %d chars, cut landed before 80%% of budget", len(body))
	}
	if strings.HasSuffix(body, "\n") {
		t.Error("paragraph cut should not leave a trailing newline")
	}
}

func TestTruncate_HardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("a", 200)
	got := Truncate(text, 100)
	want := strings.Repeat("a", 100) + TruncationMarker
	if got != want {
		t.Errorf("hard cut produced %d chars, want %d", len(got), len(want))
	}
}

func TestTruncate_DoesNotSplitMultiByteCharacters(t *testing.T) {
	// A three-byte character straddling the byte cap must be dropped
	// whole, not sliced into invalid UTF-8.
	text := strings.Repeat("a", 99) + "日日" // cap lands mid-rune
	got := Truncate(text, 100)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	body := strings.TrimSuffix(got, TruncationMarker)
	if len(body) != 99 {
		t.Errorf("body is %d bytes, want 99 (the straddling character dropped whole)", len(body))
	}
}

func TestDownload_AcceptsPDFMagic(t *testing.T) {
	payload := "%PDF-1.7 fake document body"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	data, err := NewDownloader().Download(server.URL)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != payload {
		t.Errorf("got %d bytes, want %d", len(data), len(payload))
	}
}

func TestDownload_RejectsNonPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer server.Close()

	_, err := NewDownloader().Download(server.URL)
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestDownload_RejectsOversizedContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "999999999999")
			return
		}
		t.Error("body should not be requested when HEAD advertises an oversized payload")
	}))
	defer server.Close()

	_, err := NewDownloader().Download(server.URL)
	if !errors.Is(err, httpclient.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	if _, err := Extract([]byte("plain text, no pdf structure")); err == nil {
		t.Error("expected an error for malformed input")
	}
}
