package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/delver/llm"
	"github.com/richinex/delver/search"
)

// noResultsMessage is the terminal history entry for an empty result set.
const noResultsMessage = "No search results found."

// webSearchTool searches the web with model-judged quality assessment and
// bounded query refinement. This is the most involved handler: it retries
// on quality failures (never on transport failures), accumulates results
// across attempts, and falls back to a no-tools answer when search is
// unavailable.
type webSearchTool struct {
	o *Orchestrator
}

func (t *webSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "web_search",
		Description: "Search the web and return a ranked list of results.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The search query", Required: true},
			{Name: "engine", ParamType: "string", Description: "Search engine name (optional)", Required: false},
		},
	}
}

func (t *webSearchTool) Execute(ctx context.Context, args map[string]any) (Outcome, error) {
	o := t.o

	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		// Recovery heuristic: fall back to the turn's question, then the
		// most recent user message.
		query = strings.TrimSpace(o.session.OriginalQuestion())
		if query == "" {
			query = strings.TrimSpace(o.session.LastUserMessage())
		}
		if query == "" {
			o.events.Errorf("web_search called with no query and none could be recovered")
			return Outcome{}, fmt.Errorf("%w: no query given and none recoverable", ErrInvalidQuery)
		}
	}
	engine := stringArg(args, "engine")

	o.events.Status(fmt.Sprintf("searching for %q...", query))

	var (
		allResults   []search.Result
		seenURLs     []string
		seen         = make(map[string]bool)
		searchFailed bool
	)

	refinements := 0
	for {
		results, err := o.retriever.Search(ctx, query, engine)
		if err != nil {
			// Transport failures never retry; only quality failures do.
			o.events.Errorf("search failed: %v", err)
			searchFailed = true
			break
		}

		allResults = append(allResults, results...)
		for _, r := range results {
			if r.URL != "" && !seen[r.URL] {
				seen[r.URL] = true
				seenURLs = append(seenURLs, r.URL)
			}
		}

		if len(results) == 0 {
			// A refined query coming back empty just ends the loop when
			// earlier attempts already produced results.
			if len(allResults) > 0 {
				break
			}
			// Terminal condition, not a retry trigger.
			o.appendMessage(llm.AssistantMessage(noResultsMessage))
			return Outcome{Continue: false}, nil
		}

		if t.resultsRelevant(ctx, query, results) {
			break
		}

		if refinements >= o.cfg.MaxRefinements {
			o.events.Warningf("search results still not relevant after %d attempts; keeping what we have", refinements+1)
			break
		}

		refined, err := o.completePrompt(ctx, refinePrompt(query, results))
		if err != nil || strings.TrimSpace(refined) == "" {
			break
		}
		query = strings.TrimSpace(refined)
		refinements++
		o.events.Status(fmt.Sprintf("refining search: %q...", query))
	}

	if searchFailed || len(allResults) == 0 {
		t.fallbackAnswer(ctx, query, seenURLs)
		return Outcome{Continue: false}, nil
	}

	o.session.SetLastResults(allResults)
	for i, r := range allResults {
		o.events.SearchResultFound(i+1, r)
	}

	// Record the results in history so the continuation turn can reason
	// over them, and stage the continuation content itself.
	o.appendMessage(llm.AssistantMessage(searchResultsEntry(query, allResults)))
	o.session.SetPendingContinuation(resultsContinuationPrompt(o.session.OriginalQuestion()))

	o.suggestResults(ctx, query)
	return Outcome{Continue: true}, nil
}

// resultsRelevant asks the model to judge result quality. A transport
// error during the judgment accepts the results rather than discarding a
// usable result set.
func (t *webSearchTool) resultsRelevant(ctx context.Context, query string, results []search.Result) bool {
	verdict, err := t.o.completePrompt(ctx, relevancePrompt(query, results))
	if err != nil {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(verdict)), "yes")
}

// fallbackAnswer routes a plain (non-tool) turn to the model so it can
// answer from partial context when search was unavailable. Any snippets
// already accumulated are compressed first so the prompt stays bounded.
func (t *webSearchTool) fallbackAnswer(ctx context.Context, query string, urls []string) {
	o := t.o

	notes := ""
	if snippets := o.session.Snippets(); len(snippets) > 0 {
		compressed, err := o.completePrompt(ctx, summarizePrompt(strings.Join(snippets, "\n\n")))
		if err == nil {
			notes = compressed
		}
	}

	answer, err := o.completePrompt(ctx, fallbackPrompt(query, notes, urls))
	if err != nil {
		o.events.Errorf("fallback answer failed: %v", err)
		return
	}

	o.appendMessage(llm.AssistantMessage(answer))
	o.lastAnswer = answer
	o.events.AnswerReady(answer)
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
