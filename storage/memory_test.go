package storage

import (
	"context"
	"testing"

	"github.com/richinex/delver/agent"
	"github.com/richinex/delver/llm"
)

func TestInMemorySaveLoad(t *testing.T) {
	s := NewInMemoryStorage()
	ctx := context.Background()

	history := []llm.ChatMessage{
		llm.SystemMessage("you are helpful"),
		llm.UserMessage("hello"),
		llm.AssistantMessage("hi"),
	}
	if err := s.Save(ctx, "session-1", history); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d messages, want 3", len(loaded))
	}
	if loaded[1].Content != "hello" {
		t.Errorf("message content = %q", loaded[1].Content)
	}
}

func TestInMemoryLoadMissingSession(t *testing.T) {
	s := NewInMemoryStorage()

	loaded, err := s.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing session should not error: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("want empty slice, got %v", loaded)
	}
}

func TestInMemoryLoadReturnsCopy(t *testing.T) {
	s := NewInMemoryStorage()
	ctx := context.Background()

	_ = s.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("original")})
	loaded, _ := s.Load(ctx, "s")
	loaded[0].Content = "mutated"

	again, _ := s.Load(ctx, "s")
	if again[0].Content != "original" {
		t.Error("stored history mutated through a loaded copy")
	}
}

func TestInMemoryDelete(t *testing.T) {
	s := NewInMemoryStorage()
	ctx := context.Background()

	_ = s.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("x")})
	if err := s.Delete(ctx, "s"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err := s.Exists(ctx, "s")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("session still exists after delete")
	}
}

func TestInMemoryToolLog(t *testing.T) {
	s := NewInMemoryStorage()
	ctx := context.Background()

	entries := []agent.ToolCallLogEntry{
		{Tool: "web_search", Args: map[string]any{"query": "go"}},
		{Tool: "read_url", Args: map[string]any{"url": "https://go.dev"}},
	}
	if err := s.AppendToolCalls(ctx, "s", entries); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendToolCalls(ctx, "s", entries[:1]); err != nil {
		t.Fatalf("append: %v", err)
	}

	loaded, err := s.LoadToolCalls(ctx, "s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d entries, want 3", len(loaded))
	}
	if loaded[1].Tool != "read_url" {
		t.Errorf("entry order wrong: %q", loaded[1].Tool)
	}
}
