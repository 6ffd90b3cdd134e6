package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/richinex/delver/llm"
)

// paddingProvider always replies with the same oversized summary, so
// reduction rounds never shrink their input.
type paddingProvider struct {
	calls int
}

func (p *paddingProvider) Name() string  { return "padding" }
func (p *paddingProvider) Model() string { return "padding-model" }

func (p *paddingProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.Response, error) {
	p.calls++
	return llm.Response{
		Content: strings.Repeat("padding ", 5),
		Usage:   &llm.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}, nil
}

func (p *paddingProvider) StreamChat(ctx context.Context, messages []llm.ChatMessage, chunks chan<- string) (*llm.TokenUsage, error) {
	resp, err := p.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	chunks <- resp.Content
	return resp.Usage, nil
}

func TestPackBatches(t *testing.T) {
	tests := []struct {
		name     string
		snippets []string
		budget   int
		want     int
	}{
		{"all fit one batch", []string{"aa", "bb", "cc"}, 100, 1},
		{"greedy split", []string{"aaaa", "bbbb", "cccc"}, 8, 2},
		{"one per batch", []string{"aaaaaa", "bbbbbb", "cccccc"}, 10, 3},
		{"oversized snippet gets own batch", []string{strings.Repeat("x", 50), "a"}, 10, 2},
		{"single snippet", []string{"abc"}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := packBatches(tt.snippets, tt.budget)
			if len(batches) != tt.want {
				t.Fatalf("batches = %d, want %d", len(batches), tt.want)
			}

			// Every snippet survives packing, in order.
			var flat []string
			for _, b := range batches {
				flat = append(flat, b...)
			}
			if len(flat) != len(tt.snippets) {
				t.Fatalf("flattened = %d snippets, want %d", len(flat), len(tt.snippets))
			}
			for i := range flat {
				if flat[i] != tt.snippets[i] {
					t.Errorf("snippet %d reordered or altered", i)
				}
			}
		})
	}
}

func TestSummarizeSingleBatchSingleCall(t *testing.T) {
	provider := &scriptProvider{steps: []scriptStep{{content: "combined summary"}}}
	o := newTestOrchestrator(provider, &fakeRetriever{}, nil, Config{})
	o.Session().AddSnippet("left over")

	// No BeginTurn: the original question is empty, so synthesis is a
	// no-op and the call count isolates the summarizer.
	o.summarize(context.Background(), []string{"first snippet", "second snippet"})

	if provider.calls != 1 {
		t.Errorf("model calls = %d, want 1", provider.calls)
	}
	if len(o.Session().Snippets()) != 0 {
		t.Error("snippet accumulator not cleared after summarization")
	}
}

func TestSummarizeRecursiveReduction(t *testing.T) {
	// Budget 10 forces one batch per snippet; the first-round summaries
	// are still too long combined, so a second round runs over them.
	provider := &scriptProvider{steps: []scriptStep{
		{content: "SUMMARY1"}, {content: "SUMMARY2"}, {content: "SUMMARY3"},
		{content: "S1"}, {content: "S2"}, {content: "S3"},
	}}
	o := newTestOrchestrator(provider, &fakeRetriever{}, nil, Config{SummaryBudget: 10})

	o.summarize(context.Background(), []string{"aaaaaa", "bbbbbb", "cccccc"})

	if provider.calls != 6 {
		t.Errorf("model calls = %d, want 6 (3 first round, 3 second)", provider.calls)
	}
}

func TestSummarizeNonShrinkingModelTerminates(t *testing.T) {
	// Summaries that never fit the budget must hit the round cap instead of
	// recursing forever.
	provider := &paddingProvider{}
	events := &recordingEvents{}
	o := New(llm.NewClient(provider), &fakeRetriever{}, events, Config{SummaryBudget: 10})

	o.summarize(context.Background(), []string{"aaaaaa", "bbbbbb", "cccccc"})

	// Three one-snippet batches per round, capped at maxSummaryRounds.
	if want := 3 * maxSummaryRounds; provider.calls != want {
		t.Errorf("model calls = %d, want %d", provider.calls, want)
	}
	var warned bool
	for _, w := range events.warnings {
		if strings.Contains(w, "over budget") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected an over-budget warning, got %v", events.warnings)
	}
}

func TestSummarizeFailureAbandonsWhole(t *testing.T) {
	provider := &scriptProvider{steps: []scriptStep{
		{content: "SUMMARY1"},
		{err: errors.New("model down")},
	}}
	events := &recordingEvents{}
	o := newTestOrchestrator(provider, &fakeRetriever{}, events, Config{SummaryBudget: 10})
	o.Session().BeginTurn("q")

	o.summarize(context.Background(), []string{"aaaaaa", "bbbbbb"})

	if provider.calls != 2 {
		t.Errorf("model calls = %d, want 2 (second batch fails, no salvage)", provider.calls)
	}
	if len(events.errors) == 0 {
		t.Error("failed summarization not reported")
	}
	if len(events.answers) != 0 {
		t.Error("no answer should be synthesized from a failed summarization")
	}
	if len(o.Session().Snippets()) != 0 {
		t.Error("snippet accumulator must be cleared even on failure")
	}
}
