package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/richinex/delver/llm"
)

var absoluteURLPattern = regexp.MustCompile(`^https?://`)

// readEntryPrefix marks history entries produced by read_url.
const readEntryPrefix = "Content from "

// readURLTool fetches a page and records one window of its text. The last
// read outcome is kept on the tool so the deep-reader can consume it after
// a synthesized dispatch; the fields are valid only when lastOK is true.
type readURLTool struct {
	o *Orchestrator

	lastSnippet string
	lastHasMore bool
	lastOK      bool
}

func (t *readURLTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_url",
		Description: "Fetch a web page and return a window of its readable text.",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "Absolute http(s) URL to read", Required: true},
			{Name: "start", ParamType: "number", Description: "Character offset to start from (default 0)", Required: false},
			{Name: "length", ParamType: "number", Description: "Window length in characters", Required: false},
		},
	}
}

func (t *readURLTool) Execute(ctx context.Context, args map[string]any) (Outcome, error) {
	o := t.o
	t.lastSnippet, t.lastHasMore, t.lastOK = "", false, false

	url := strings.TrimSpace(stringArg(args, "url"))
	if !absoluteURLPattern.MatchString(url) {
		return Outcome{}, fmt.Errorf("%w: url must be an absolute http(s) URL, got %q", ErrInvalidArgument, url)
	}

	start, err := intArg(args, "start", 0)
	if err != nil || start < 0 {
		return Outcome{}, fmt.Errorf("%w: start must be a non-negative number", ErrInvalidArgument)
	}
	length, err := intArg(args, "length", o.cfg.ReadLength)
	if err != nil || length <= 0 {
		return Outcome{}, fmt.Errorf("%w: length must be a positive number", ErrInvalidArgument)
	}

	o.events.Status(fmt.Sprintf("reading %s...", url))

	text, err := o.retriever.FetchPage(ctx, url)
	if err != nil {
		// Record the failure in history so the next model turn has context.
		o.events.Errorf("failed to read %s: %v", url, err)
		o.appendMessage(llm.AssistantMessage(fmt.Sprintf("Error reading %s: %v", url, err)))
		return Outcome{Continue: true}, nil
	}

	snippet, hasMore := sliceWindow(text, start, length)
	t.lastSnippet, t.lastHasMore, t.lastOK = snippet, hasMore, true

	entry := formatReadEntry(url, snippet, hasMore)
	o.appendMessage(llm.AssistantMessage(entry))
	if snippet != "" {
		o.session.AddSnippet(snippet)
	}
	o.events.SnippetRead(url, snippet)

	return Outcome{Continue: true}, nil
}

// sliceWindow returns the [start, start+length) rune window of text and
// whether content remains past the window.
func sliceWindow(text string, start, length int) (string, bool) {
	runes := []rune(text)
	if start >= len(runes) {
		return "", false
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end]), end < len(runes)
}

// formatReadEntry renders the history entry for a fetched window. A
// trailing ellipsis marks that more content remains.
func formatReadEntry(url, snippet string, hasMore bool) string {
	entry := readEntryPrefix + url + ":\n" + snippet
	if hasMore {
		entry += "..."
	}
	return entry
}

// intArg reads an optional numeric argument. JSON decoding yields float64
// for numbers, but ints are accepted too for internally synthesized calls.
func intArg(args map[string]any, key string, fallback int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("argument %q is not a number", key)
	}
}
