package agent

import "github.com/richinex/delver/search"

// Events is the presentation boundary. The orchestrator emits intent events
// and never inspects their effect; implementations render them however they
// like (terminal output, logs, nothing at all).
//
// Information Hiding:
// - Rendering concerns live entirely behind this interface
// - The core never blocks on or reads back from the presentation layer
type Events interface {
	// Busy signals the start and end of background work.
	Busy(active bool)

	// Status reports a short progress line, e.g. "searching...".
	Status(text string)

	// MessageAppended fires whenever a message is added to the conversation.
	MessageAppended(role, content string)

	// ReplyChunk fires per model token when reply streaming is enabled.
	ReplyChunk(text string)

	// SearchResultFound fires once per search result, with its 1-based index.
	SearchResultFound(index int, result search.Result)

	// SnippetRead fires after a page window has been fetched.
	SnippetRead(url, snippet string)

	// ResultsHighlighted reports which result indices (0-based) the model
	// judged worth reading.
	ResultsHighlighted(indices []int)

	// SummaryReady fires when recursive summarization has produced its
	// final text.
	SummaryReady(summary string)

	// AnswerReady fires with the final user-facing answer for the turn.
	AnswerReady(answer string)

	// Warningf reports a recoverable condition.
	Warningf(format string, args ...any)

	// Errorf reports a failure that abandoned the current tool cycle.
	Errorf(format string, args ...any)
}

// NopEvents discards all events. Useful for tests and embedding.
type NopEvents struct{}

func (NopEvents) Busy(bool)                            {}
func (NopEvents) Status(string)                        {}
func (NopEvents) MessageAppended(string, string)       {}
func (NopEvents) ReplyChunk(string)                    {}
func (NopEvents) SearchResultFound(int, search.Result) {}
func (NopEvents) SnippetRead(string, string)           {}
func (NopEvents) ResultsHighlighted([]int)             {}
func (NopEvents) SummaryReady(string)                  {}
func (NopEvents) AnswerReady(string)                   {}
func (NopEvents) Warningf(string, ...any)              {}
func (NopEvents) Errorf(string, ...any)                {}

var _ Events = NopEvents{}
