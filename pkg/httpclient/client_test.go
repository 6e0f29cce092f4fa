package httpclient

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGet_SetsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer server.Close()

	resp, err := NewClient(5 * time.Second).Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("User-Agent = %q, want a browser-like value", gotUA)
	}
	if gotAccept == "" {
		t.Error("Accept header missing")
	}
}

func TestDownloadLimited_WithinCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte("small payload"))
	}))
	defer server.Close()

	body, contentType, err := NewClient(5*time.Second).DownloadLimited(server.URL, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "small payload" {
		t.Errorf("body = %q", body)
	}
	if contentType != "application/pdf" {
		t.Errorf("content type = %q", contentType)
	}
}

func TestDownloadLimited_BodyExceedsCap(t *testing.T) {
	// No Content-Length precheck help here: the server streams a body
	// larger than the cap without advertising its size.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		f, _ := w.(http.Flusher)
		io.WriteString(w, strings.Repeat("x", 512))
		if f != nil {
			f.Flush()
		}
		io.WriteString(w, strings.Repeat("x", 600))
	}))
	defer server.Close()

	_, _, err := NewClient(5*time.Second).DownloadLimited(server.URL, 1000)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestDownloadLimited_ContentLengthPrecheck(t *testing.T) {
	bodyRequested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "5000")
			return
		}
		bodyRequested = true
	}))
	defer server.Close()

	_, _, err := NewClient(5*time.Second).DownloadLimited(server.URL, 1000)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if bodyRequested {
		t.Error("body must not be fetched when HEAD advertises an oversized payload")
	}
}

func TestDownloadLimited_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, _, err := NewClient(5*time.Second).DownloadLimited(server.URL, 1000); err == nil {
		t.Error("expected an error for a 404 response")
	}
}
