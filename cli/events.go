// Terminal rendering of orchestration events.
//
// Information Hiding:
// - Output formatting hidden from the orchestration core
// - Verbosity handling internalized

package cli

import (
	"fmt"
	"os"

	"github.com/richinex/delver/agent"
	"github.com/richinex/delver/search"
)

// terminalEvents renders orchestration events to stdout/stderr.
type terminalEvents struct {
	verbose bool
}

func (t *terminalEvents) Busy(active bool) {}

func (t *terminalEvents) Status(text string) {
	if t.verbose {
		fmt.Printf("  [%s]\n", text)
	}
}

func (t *terminalEvents) MessageAppended(role, content string) {
	if t.verbose {
		fmt.Printf("  %s: %s\n", role, truncate(content, 200))
	}
}

func (t *terminalEvents) ReplyChunk(text string) {
	fmt.Print(text)
}

func (t *terminalEvents) SearchResultFound(index int, result search.Result) {
	fmt.Printf("  %d. %s\n     %s\n", index, result.Title, result.URL)
}

func (t *terminalEvents) SnippetRead(url, snippet string) {
	if t.verbose {
		fmt.Printf("  read %s (%d chars)\n", url, len(snippet))
	}
}

func (t *terminalEvents) ResultsHighlighted(indices []int) {
	if t.verbose {
		fmt.Printf("  reading results: %v\n", oneBased(indices))
	}
}

func (t *terminalEvents) SummaryReady(summary string) {
	if t.verbose {
		fmt.Printf("  summary:\n%s\n", summary)
	}
}

func (t *terminalEvents) AnswerReady(answer string) {}

func (t *terminalEvents) Warningf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func (t *terminalEvents) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func oneBased(indices []int) []int {
	out := make([]int, len(indices))
	for i, n := range indices {
		out[i] = n + 1
	}
	return out
}

var _ agent.Events = (*terminalEvents)(nil)
