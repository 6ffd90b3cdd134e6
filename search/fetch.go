package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxFetchBytes caps how much of a page body is read. Pages larger than this
// are truncated rather than rejected.
const maxFetchBytes = 2 << 20 // 2MB

// PageFetcher implements Fetcher over plain HTTP with readability extraction.
// Pages are reduced to their readable article text; when extraction fails the
// raw body is returned with tags stripped so callers always get something.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher creates a fetcher with the given timeout.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	return &PageFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves a page and returns its readable text content.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch failed: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	text, err := extractText(string(body), parsed)
	if err != nil {
		return "", err
	}
	return text, nil
}

// extractText reduces an HTML document to readable text. Readability handles
// article-shaped pages; everything else falls back to tag stripping.
func extractText(html string, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return normalizeWhitespace(article.TextContent), nil
	}

	stripped := normalizeWhitespace(cleanHTML(html))
	if stripped == "" {
		return "", errors.New("page has no extractable text")
	}
	return stripped, nil
}

// normalizeWhitespace collapses runs of blank space so offsets into the text
// are stable across fetches.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ Fetcher = (*PageFetcher)(nil)
