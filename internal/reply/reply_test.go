package reply

import (
	"testing"
)

func TestParsePureToolCall(t *testing.T) {
	p := Parse(`{"tool": "web_search", "arguments": {"query": "go generics"}}`)
	if p.Kind != KindToolCall {
		t.Fatalf("kind = %v, want KindToolCall", p.Kind)
	}
	if p.Call.Tool != "web_search" {
		t.Errorf("tool = %q, want web_search", p.Call.Tool)
	}
	if got := p.Call.Arguments["query"]; got != "go generics" {
		t.Errorf("query = %v, want %q", got, "go generics")
	}
}

func TestParseToolCallWithProse(t *testing.T) {
	cases := []string{
		`Let me search for that. {"tool": "web_search", "arguments": {"query": "x"}}`,
		`{"tool": "web_search", "arguments": {"query": "x"}} Searching now.`,
		`I'll look it up... {"tool": "web_search", "arguments": {"query": "x"}} Done.`,
	}
	for _, text := range cases {
		p := Parse(text)
		if p.Kind != KindToolCall {
			t.Errorf("Parse(%q).Kind = %v, want KindToolCall", text, p.Kind)
			continue
		}
		if p.Call.Tool != "web_search" {
			t.Errorf("Parse(%q).Call.Tool = %q", text, p.Call.Tool)
		}
	}
}

func TestParseToolCallInCodeFence(t *testing.T) {
	text := "```json\n{\"tool\": \"read_url\", \"arguments\": {\"url\": \"https://example.com\"}}\n```"
	p := Parse(text)
	if p.Kind != KindToolCall {
		t.Fatalf("kind = %v, want KindToolCall", p.Kind)
	}
	if p.Call.Tool != "read_url" {
		t.Errorf("tool = %q, want read_url", p.Call.Tool)
	}
}

func TestParseBareCodeFence(t *testing.T) {
	text := "```\n{\"tool\": \"instant_answer\", \"arguments\": {\"query\": \"q\"}}\n```"
	if p := Parse(text); p.Kind != KindToolCall || p.Call.Tool != "instant_answer" {
		t.Errorf("fenced tool call not recognized: %+v", p)
	}
}

func TestParsePlainText(t *testing.T) {
	p := Parse("The capital of France is Paris.")
	if p.Kind != KindPlainText {
		t.Fatalf("kind = %v, want KindPlainText", p.Kind)
	}
	if p.Call != nil {
		t.Errorf("call = %+v, want nil", p.Call)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	p := Parse(`{"tool": "web_search", "arguments": {broken}`)
	if p.Kind != KindPlainText {
		t.Errorf("malformed JSON should degrade to plain text, got %v", p.Kind)
	}
}

func TestParseObjectWithoutToolName(t *testing.T) {
	p := Parse(`{"thought": "hmm", "arguments": {}}`)
	if p.Kind != KindPlainText {
		t.Errorf("object without tool name should be plain text, got %v", p.Kind)
	}
}

func TestParseMissingArguments(t *testing.T) {
	p := Parse(`{"tool": "web_search"}`)
	if p.Kind != KindToolCall {
		t.Fatalf("kind = %v, want KindToolCall", p.Kind)
	}
	if p.Call.Arguments == nil {
		t.Error("arguments should default to an empty map")
	}
}

func TestParseSkipContinue(t *testing.T) {
	p := Parse(`{"tool": "read_url", "arguments": {"url": "https://e.com"}, "skipContinue": true}`)
	if p.Kind != KindToolCall || !p.Call.SkipContinue {
		t.Errorf("skipContinue not carried through: %+v", p)
	}
}

func TestIsToolCall(t *testing.T) {
	if !IsToolCall(`{"tool": "web_search", "arguments": {}}`) {
		t.Error("expected tool call")
	}
	if IsToolCall("just words") {
		t.Error("expected plain text")
	}
}
