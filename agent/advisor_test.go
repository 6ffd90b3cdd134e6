package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/richinex/delver/search"
)

func TestParseNumberList(t *testing.T) {
	tests := []struct {
		reply string
		want  []int
	}{
		{"1, 3", []int{0, 2}},
		{"I would read 2 and 4", []int{1}},
		{"3,1", []int{2, 0}},
		{"1 2 3", []int{0, 1, 2}},
		{"none", nil},
		{"", nil},
		{"0", nil},
	}

	for _, tt := range tests {
		got := parseNumberList(tt.reply)
		if len(got) != len(tt.want) {
			t.Errorf("parseNumberList(%q) = %v, want %v", tt.reply, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseNumberList(%q) = %v, want %v", tt.reply, got, tt.want)
				break
			}
		}
	}
}

func TestSuggestTriggersAutoReadPipeline(t *testing.T) {
	// The page fits one window, so no continuation question is asked.
	provider := &scriptProvider{steps: []scriptStep{
		{content: "1"},            // suggestion: read result 1
		{content: "page summary"}, // summarization
		{content: "final answer"}, // synthesis
	}}
	retriever := &fakeRetriever{page: "Article body about the question."}
	events := &recordingEvents{}
	o := newTestOrchestrator(provider, retriever, events, Config{})
	o.Session().BeginTurn("q")

	o.Session().SetLastResults([]search.Result{
		{Title: "first", URL: "https://example.com/a", Snippet: "s1"},
		{Title: "second", URL: "https://example.com/b", Snippet: "s2"},
	})
	o.suggestResults(context.Background(), "q")

	if retriever.fetchCount != 1 {
		t.Errorf("fetches = %d, want 1 (only the suggested result)", retriever.fetchCount)
	}
	if !o.Session().Highlighted(0) || o.Session().Highlighted(1) {
		t.Error("highlighting does not match the suggestion")
	}
	if len(events.answers) != 1 || !strings.Contains(events.answers[0], "final answer") {
		t.Errorf("pipeline did not produce the final answer: %v", events.answers)
	}
	if o.Session().ToolWorkflowActive() {
		t.Error("workflow should conclude after synthesis")
	}
}

func TestSuggestIgnoresNonNumericReply(t *testing.T) {
	provider := &scriptProvider{steps: []scriptStep{{content: "none of these look useful"}}}
	retriever := &fakeRetriever{}
	o := newTestOrchestrator(provider, retriever, nil, Config{})
	o.Session().BeginTurn("q")

	o.Session().SetLastResults([]search.Result{{Title: "t", URL: "https://e.com"}})
	o.suggestResults(context.Background(), "q")

	if retriever.fetchCount != 0 {
		t.Error("non-numeric suggestion must not trigger reads")
	}
}

func TestSuggestSkipsOutOfRangeIndices(t *testing.T) {
	provider := &scriptProvider{steps: []scriptStep{{content: "7, 9"}}}
	retriever := &fakeRetriever{}
	o := newTestOrchestrator(provider, retriever, nil, Config{})
	o.Session().BeginTurn("q")

	o.Session().SetLastResults([]search.Result{{Title: "t", URL: "https://e.com"}})
	o.suggestResults(context.Background(), "q")

	if retriever.fetchCount != 0 {
		t.Error("out-of-range indices must not trigger reads")
	}
}
