// Package reply parses model output into a tagged result.
//
// Models asked to invoke a tool respond with a single JSON object, but in
// practice the object arrives wrapped in markdown fences, prefixed with
// commentary, or not at all. This package formalizes that parsing as a small
// contract with an explicit fallback order:
//
//  1. strip markdown code fences
//  2. try the whole text as a tool-call object
//  3. try the first '{' .. last '}' span as a tool-call object
//  4. otherwise the text is plain prose
//
// Parse never fails: malformed input degrades to KindPlainText.
package reply

import (
	"encoding/json"
	"strings"
)

// Kind tags the outcome of parsing a model reply.
type Kind int

const (
	// KindPlainText means the reply carries no tool invocation.
	KindPlainText Kind = iota
	// KindToolCall means the reply is a structured tool invocation.
	KindToolCall
)

// ToolCall is a structured request naming a registered tool and its arguments.
// SkipContinue suppresses the reasoning-continuation turn that normally
// follows tool execution; it is only ever set on internally synthesized calls.
type ToolCall struct {
	Tool         string         `json:"tool"`
	Arguments    map[string]any `json:"arguments"`
	SkipContinue bool           `json:"skipContinue,omitempty"`
}

// Parsed is the tagged result of parsing one model reply.
type Parsed struct {
	Kind Kind
	Text string    // original text, fences stripped
	Call *ToolCall // set when Kind == KindToolCall
}

// Parse classifies a model reply as a tool call or plain text.
func Parse(text string) Parsed {
	stripped := stripCodeFences(text)

	if call, ok := decodeToolCall(stripped); ok {
		return Parsed{Kind: KindToolCall, Text: stripped, Call: call}
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start != -1 && end > start {
		if call, ok := decodeToolCall(stripped[start : end+1]); ok {
			return Parsed{Kind: KindToolCall, Text: stripped, Call: call}
		}
	}

	return Parsed{Kind: KindPlainText, Text: stripped}
}

// IsToolCall reports whether the text parses as a well-formed tool call.
func IsToolCall(text string) bool {
	return Parse(text).Kind == KindToolCall
}

// decodeToolCall attempts to unmarshal s as a tool-call object. A decoded
// object with an empty tool name is not a tool call.
func decodeToolCall(s string) (*ToolCall, bool) {
	var call ToolCall
	if err := json.Unmarshal([]byte(s), &call); err != nil {
		return nil, false
	}
	if call.Tool == "" {
		return nil, false
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	return &call, true
}

// stripCodeFences removes markdown code fence markers from a reply.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}
