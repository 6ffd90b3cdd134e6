// Package search provides the retrieval gateway: web search engines, the
// instant-answer lookup, and full page fetching.
//
// Information Hiding:
// - Engine endpoints, scraping, and rate limiting hidden behind Engine
// - Page fetching and article extraction hidden behind Fetcher
// - The Gateway aggregates both and resolves engine names
package search

import (
	"context"
	"fmt"
)

// Result is a single item returned by an Engine. Ordering as returned is
// preserved and is the basis for the 1-based indexing shown to the model.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Engine executes a query and returns results.
type Engine interface {
	// Name returns the engine's registered name.
	Name() string

	// Search executes a query and returns ordered results.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Fetcher retrieves the readable text of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Answerer looks up a structured instant answer for a query.
type Answerer interface {
	InstantAnswer(ctx context.Context, query string) (*InstantAnswer, error)
}

// Gateway aggregates the retrieval capabilities behind one surface.
type Gateway struct {
	engines       map[string]Engine
	defaultEngine string
	fetcher       Fetcher
	answerer      Answerer
}

// NewGateway creates a gateway with the given default engine, fetcher, and
// instant answerer. Additional engines are added with RegisterEngine.
func NewGateway(defaultEngine Engine, fetcher Fetcher, answerer Answerer) *Gateway {
	g := &Gateway{
		engines:       map[string]Engine{},
		defaultEngine: defaultEngine.Name(),
		fetcher:       fetcher,
		answerer:      answerer,
	}
	g.engines[defaultEngine.Name()] = defaultEngine
	return g
}

// RegisterEngine adds an engine under its own name.
// Returns an error if the name is already taken.
func (g *Gateway) RegisterEngine(engine Engine) error {
	name := engine.Name()
	if _, exists := g.engines[name]; exists {
		return fmt.Errorf("engine %q already registered", name)
	}
	g.engines[name] = engine
	return nil
}

// Engines returns the registered engine names.
func (g *Gateway) Engines() []string {
	names := make([]string, 0, len(g.engines))
	for name := range g.engines {
		names = append(names, name)
	}
	return names
}

// Search runs a query against the named engine. An empty or unknown engine
// name falls back to the default engine; a search never fails over a bad
// engine label.
func (g *Gateway) Search(ctx context.Context, query, engine string) ([]Result, error) {
	e, ok := g.engines[engine]
	if !ok {
		e = g.engines[g.defaultEngine]
	}
	results, err := e.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", e.Name(), err)
	}
	return results, nil
}

// FetchPage retrieves the readable text of a page.
func (g *Gateway) FetchPage(ctx context.Context, url string) (string, error) {
	return g.fetcher.Fetch(ctx, url)
}

// InstantAnswer looks up a structured instant answer.
func (g *Gateway) InstantAnswer(ctx context.Context, query string) (*InstantAnswer, error) {
	return g.answerer.InstantAnswer(ctx, query)
}
