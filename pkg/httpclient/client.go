package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrTooLarge is returned by DownloadLimited when the remote payload
// exceeds the caller's size cap.
var ErrTooLarge = fmt.Errorf("payload exceeds size limit")

// HTTPClient wraps an http.Client with browser-like headers. Several
// publishers reject requests with Go's default User-Agent, so every
// request goes out looking like a desktop browser.
type HTTPClient struct {
	client *http.Client
}

// NewClient creates an HTTP client with the given per-request timeout.
func NewClient(timeout time.Duration) *HTTPClient {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &HTTPClient{client: client}
}

// Do executes an HTTP request with browser headers applied.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Head is a convenience method for HEAD requests.
func (c *HTTPClient) Head(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// DownloadLimited fetches a URL enforcing a byte cap. When the server
// advertises a Content-Length above the cap the body is never read;
// otherwise reading stops as soon as the cap is crossed. It returns the
// payload and the response Content-Type.
func (c *HTTPClient) DownloadLimited(url string, maxBytes int64) ([]byte, string, error) {
	if head, err := c.Head(url); err == nil {
		head.Body.Close()
		if length := head.Header.Get("Content-Length"); length != "" {
			if n, err := strconv.ParseInt(length, 10, 64); err == nil && n > maxBytes {
				return nil, "", fmt.Errorf("%w: content-length %d > %d", ErrTooLarge, n, maxBytes)
			}
		}
	}

	resp, err := c.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download %s: unexpected status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, "", fmt.Errorf("%w: body larger than %d bytes", ErrTooLarge, maxBytes)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// setHeaders applies browser-like headers to avoid 406 responses.
func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
