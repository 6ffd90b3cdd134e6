package search

import (
	"context"
	"errors"
	"testing"
)

// fakeEngine records queries and returns canned results.
type fakeEngine struct {
	name    string
	results []Result
	err     error
	queries []string
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Search(ctx context.Context, query string) ([]Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, url string) (string, error) { return "", nil }

type fakeAnswerer struct{}

func (fakeAnswerer) InstantAnswer(ctx context.Context, query string) (*InstantAnswer, error) {
	return &InstantAnswer{}, nil
}

func TestGatewayDefaultEngine(t *testing.T) {
	def := &fakeEngine{name: "primary", results: []Result{{Title: "t", URL: "https://e.com"}}}
	g := NewGateway(def, fakeFetcher{}, fakeAnswerer{})

	results, err := g.Search(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || len(def.queries) != 1 {
		t.Errorf("default engine not used: results=%d queries=%d", len(results), len(def.queries))
	}
}

func TestGatewayUnknownEngineFallsBack(t *testing.T) {
	def := &fakeEngine{name: "primary"}
	other := &fakeEngine{name: "secondary"}
	g := NewGateway(def, fakeFetcher{}, fakeAnswerer{})
	if err := g.RegisterEngine(other); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := g.Search(context.Background(), "q", "nonsense"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(def.queries) != 1 || len(other.queries) != 0 {
		t.Errorf("unknown engine should fall back to default: def=%d other=%d", len(def.queries), len(other.queries))
	}

	if _, err := g.Search(context.Background(), "q", "secondary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other.queries) != 1 {
		t.Errorf("named engine not used: %d", len(other.queries))
	}
}

func TestGatewayRegisterDuplicate(t *testing.T) {
	def := &fakeEngine{name: "primary"}
	g := NewGateway(def, fakeFetcher{}, fakeAnswerer{})
	if err := g.RegisterEngine(&fakeEngine{name: "primary"}); err == nil {
		t.Fatal("expected error for duplicate engine name")
	}
}

func TestGatewaySearchError(t *testing.T) {
	def := &fakeEngine{name: "primary", err: errors.New("network down")}
	g := NewGateway(def, fakeFetcher{}, fakeAnswerer{})
	if _, err := g.Search(context.Background(), "q", ""); err == nil {
		t.Fatal("expected wrapped engine error")
	}
}
