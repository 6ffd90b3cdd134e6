package search

import (
	"testing"
)

const sampleLiteHTML = `
<html><body><table>
<tr><td>1.</td><td><a rel="nofollow" class='result-link' href='https://go.dev/doc/'>Go Documentation</a></td></tr>
<tr><td></td><td class='result-snippet'>Official Go documentation and tutorials.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" class='result-link' href='https://pkg.go.dev/'>Go Packages</a></td></tr>
<tr><td></td><td class='result-snippet'>Search &amp; browse Go packages.</td></tr>
</table></body></html>`

func TestParseLiteResults(t *testing.T) {
	results := parseLiteResults(sampleLiteHTML)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].Title != "Go Documentation" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[0].URL != "https://go.dev/doc/" {
		t.Errorf("url = %q", results[0].URL)
	}
	if results[0].Snippet != "Official Go documentation and tutorials." {
		t.Errorf("snippet = %q", results[0].Snippet)
	}

	// Entities decoded in snippets
	if results[1].Snippet != "Search & browse Go packages." {
		t.Errorf("snippet = %q", results[1].Snippet)
	}
}

func TestParseLiteResultsFallback(t *testing.T) {
	// No result-link markup at all: the fallback scanner should still find
	// external links with plausible titles.
	html := `<html><body>
<a href="/settings">settings</a>
<a href="https://example.com/article">An interesting article</a>
<a href="https://duckduckgo.com/about">About</a>
<a href="https://example.com/article">An interesting article</a>
</body></html>`

	results := parseLiteResults(html)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (deduped external link)", len(results))
	}
	if results[0].URL != "https://example.com/article" {
		t.Errorf("url = %q", results[0].URL)
	}
}

func TestParseLiteResultsEmpty(t *testing.T) {
	if results := parseLiteResults("<html><body>nothing here</body></html>"); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML(`  <b>bold &amp; beautiful</b>&nbsp;text `)
	want := "bold & beautiful text"
	if got != want {
		t.Errorf("cleanHTML = %q, want %q", got, want)
	}
}
